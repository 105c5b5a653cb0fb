package lifecycle_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dalemusser/bloodlink/internal/app/lifecycle"
	"github.com/dalemusser/bloodlink/internal/app/system/apperr"
	"github.com/dalemusser/bloodlink/internal/app/system/authz"
	"github.com/dalemusser/bloodlink/internal/app/system/paging"
	"github.com/dalemusser/bloodlink/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type env struct {
	mgr      *lifecycle.Manager
	requests *memRequests
	users    memUsers
}

func newEnv() *env {
	reqs := newMemRequests()
	users := memUsers{}
	return &env{mgr: lifecycle.New(reqs, users, nil), requests: reqs, users: users}
}

func (e *env) caller(role string) authz.Caller {
	c := authz.Caller{
		ID:     primitive.NewObjectID(),
		Name:   "User " + role,
		Email:  role + "@example.com",
		Role:   role,
		Status: models.StatusActive,
	}
	e.users[c.ID] = models.UserSummary{ID: c.ID, Name: c.Name, Email: c.Email, District: "Dhaka", Upazila: "Mirpur"}
	return c
}

func (e *env) seed(requester primitive.ObjectID, status models.RequestStatus) models.DonationRequest {
	return e.requests.put(models.DonationRequest{
		Requester:         requester,
		RecipientName:     "Karim",
		RecipientDistrict: "Dhaka",
		RecipientUpazila:  "Dhanmondi",
		HospitalName:      "Square Hospital",
		FullAddress:       "18/F Bir Uttam Qazi Nuruzzaman Sarak",
		BloodGroup:        "A+",
		DonationDate:      time.Date(2026, 11, 5, 0, 0, 0, 0, time.UTC),
		DonationTime:      "10:00",
		RequestMessage:    "Surgery scheduled, two units needed",
		Status:            status,
		CreatedAt:         time.Now().UTC(),
	})
}

func validInput() lifecycle.Input {
	return lifecycle.Input{
		RecipientName:     "Rahim Uddin",
		RecipientDistrict: "Dhaka",
		RecipientUpazila:  "Mirpur",
		HospitalName:      "Dhaka Medical College Hospital",
		FullAddress:       "Secretariat Road, Dhaka 1000",
		BloodGroup:        "o+",
		DonationDate:      "2026-11-01",
		DonationTime:      "14:00",
		RequestMessage:    "Urgent need for an accident patient",
	}
}

func strp(s string) *string { return &s }

func wantKind(t *testing.T, err error, kind apperr.Kind, msg string) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", kind)
	}
	if got := apperr.KindOf(err); got != kind {
		t.Fatalf("kind = %v, want %v (err: %v)", got, kind, err)
	}
	if msg == "" {
		return
	}
	var ae *apperr.Error
	if !errors.As(err, &ae) || ae.Message != msg {
		t.Errorf("message = %q, want %q", err.Error(), msg)
	}
}

func TestCreate_ThenGet(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	donor := e.caller(models.RoleDonor)

	created, err := e.mgr.Create(ctx, donor, validInput())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Status != models.RequestPending {
		t.Errorf("status = %q, want pending", created.Status)
	}
	if created.BloodGroup != "O+" {
		t.Errorf("blood group = %q, want O+", created.BloodGroup)
	}
	if created.Requester == nil || created.Requester.ID != donor.ID {
		t.Fatalf("requester not expanded: %+v", created.Requester)
	}
	if created.Requester.District != "" {
		t.Errorf("create should expand requester without location, got %q", created.Requester.District)
	}
	if created.Donor != nil {
		t.Errorf("donor should be nil on a new request")
	}

	got, err := e.mgr.Get(ctx, created.ID.Hex())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.RecipientName != "Rahim Uddin" {
		t.Errorf("recipient = %q", got.RecipientName)
	}
	if got.Requester == nil || got.Requester.District != "Dhaka" {
		t.Errorf("Get should expand requester with location, got %+v", got.Requester)
	}
}

func TestCreate_Rejections(t *testing.T) {
	e := newEnv()
	ctx := context.Background()

	blocked := e.caller(models.RoleDonor)
	blocked.Status = models.StatusBlocked
	_, err := e.mgr.Create(ctx, blocked, validInput())
	wantKind(t, err, apperr.KindForbidden, "Your account is blocked. You cannot create donation requests.")

	active := e.caller(models.RoleDonor)
	in := validInput()
	in.DonationTime = ""
	_, err = e.mgr.Create(ctx, active, in)
	wantKind(t, err, apperr.KindValidation, "All fields are required")

	in = validInput()
	in.BloodGroup = "C+"
	_, err = e.mgr.Create(ctx, active, in)
	wantKind(t, err, apperr.KindValidation, "Invalid blood group")

	in = validInput()
	in.DonationDate = "next tuesday"
	_, err = e.mgr.Create(ctx, active, in)
	wantKind(t, err, apperr.KindValidation, "Invalid donation date")

	if n := len(e.requests.docs); n != 0 {
		t.Errorf("rejected creates stored %d documents", n)
	}
}

func TestCreate_SanitizesFreeText(t *testing.T) {
	e := newEnv()
	in := validInput()
	in.RequestMessage = "<script>alert(1)</script>Please help us find a donor"

	got, err := e.mgr.Create(context.Background(), e.caller(models.RoleDonor), in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if got.RequestMessage != "Please help us find a donor" {
		t.Errorf("message = %q", got.RequestMessage)
	}
}

func TestGet_NotFound(t *testing.T) {
	e := newEnv()
	for _, id := range []string{primitive.NewObjectID().Hex(), "not-an-id"} {
		_, err := e.mgr.Get(context.Background(), id)
		wantKind(t, err, apperr.KindNotFound, "Donation request not found")
	}
}

func TestList_DonorNarrowedToSelf(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	me := e.caller(models.RoleDonor)
	other := e.caller(models.RoleDonor)
	e.seed(me.ID, models.RequestPending)
	e.seed(other.ID, models.RequestPending)
	e.seed(other.ID, models.RequestDone)

	page, err := e.mgr.List(ctx, me, lifecycle.ListQuery{RequesterID: other.ID.Hex()}, paging.New(1, 10))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.TotalDocs != 1 {
		t.Fatalf("totalDocs = %d, want 1", page.TotalDocs)
	}
	if page.Docs[0].Requester == nil || page.Docs[0].Requester.ID != me.ID {
		t.Errorf("donor saw someone else's request")
	}
	if e.requests.lastFilter.Requester == nil || *e.requests.lastFilter.Requester != me.ID {
		t.Errorf("filter requester not forced to caller")
	}
}

func TestList_VolunteerSeesAllAndFilters(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	vol := e.caller(models.RoleVolunteer)
	a := e.caller(models.RoleDonor)
	e.seed(a.ID, models.RequestPending)
	e.seed(a.ID, models.RequestDone)
	e.seed(primitive.NewObjectID(), models.RequestPending)

	page, err := e.mgr.List(ctx, vol, lifecycle.ListQuery{}, paging.New(1, 10))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.TotalDocs != 3 {
		t.Errorf("totalDocs = %d, want 3", page.TotalDocs)
	}

	page, err = e.mgr.List(ctx, vol, lifecycle.ListQuery{Status: "pending"}, paging.New(1, 10))
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if page.TotalDocs != 2 {
		t.Errorf("pending totalDocs = %d, want 2", page.TotalDocs)
	}
	for _, d := range page.Docs {
		if d.Status != models.RequestPending {
			t.Errorf("got status %q in pending listing", d.Status)
		}
	}

	_, err = e.mgr.List(ctx, vol, lifecycle.ListQuery{Status: "archived"}, paging.New(1, 10))
	wantKind(t, err, apperr.KindValidation, "Invalid status value")
}

func TestListPublic_PendingOnly(t *testing.T) {
	e := newEnv()
	owner := e.caller(models.RoleDonor)
	e.seed(owner.ID, models.RequestPending)
	e.seed(owner.ID, models.RequestInProgress)

	page, err := e.mgr.ListPublic(context.Background(), "a+", "", paging.New(1, 10))
	if err != nil {
		t.Fatalf("ListPublic: %v", err)
	}
	if page.TotalDocs != 1 || page.Docs[0].Status != models.RequestPending {
		t.Fatalf("expected the single pending request, got %+v", page)
	}
	if page.Docs[0].Requester == nil || page.Docs[0].Requester.Upazila != "Mirpur" {
		t.Errorf("public listing should include requester location")
	}
}

func TestUpdate_NonOwnerDonorForbidden(t *testing.T) {
	e := newEnv()
	owner := e.caller(models.RoleDonor)
	intruder := e.caller(models.RoleDonor)
	dr := e.seed(owner.ID, models.RequestPending)

	_, err := e.mgr.Update(context.Background(), intruder, dr.ID.Hex(), lifecycle.Patch{HospitalName: strp("Elsewhere Clinic")})
	wantKind(t, err, apperr.KindForbidden, "You can only update your own donation requests")
	if got := e.requests.get(dr.ID); got.HospitalName != "Square Hospital" {
		t.Errorf("hospital changed to %q", got.HospitalName)
	}
}

func TestUpdate_VolunteerStatusOnly(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	vol := e.caller(models.RoleVolunteer)
	dr := e.seed(primitive.NewObjectID(), models.RequestInProgress)

	_, err := e.mgr.Update(ctx, vol, dr.ID.Hex(), lifecycle.Patch{HospitalName: strp("Other")})
	wantKind(t, err, apperr.KindForbidden, "Volunteers can only update donation status")

	got, err := e.mgr.Update(ctx, vol, dr.ID.Hex(), lifecycle.Patch{
		Status:       strp("done"),
		HospitalName: strp("Ignored Hospital"),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.Status != models.RequestDone {
		t.Errorf("status = %q, want done", got.Status)
	}
	if got.HospitalName != "Square Hospital" {
		t.Errorf("volunteer changed hospital to %q", got.HospitalName)
	}
}

func TestUpdate_OwnerEditsFields(t *testing.T) {
	e := newEnv()
	owner := e.caller(models.RoleDonor)
	dr := e.seed(owner.ID, models.RequestPending)

	got, err := e.mgr.Update(context.Background(), owner, dr.ID.Hex(), lifecycle.Patch{
		HospitalName: strp("BIRDEM General Hospital"),
		BloodGroup:   strp("ab-"),
		DonationDate: strp("2026-12-24T08:00:00Z"),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if got.HospitalName != "BIRDEM General Hospital" || got.BloodGroup != "AB-" {
		t.Errorf("unexpected fields: %q %q", got.HospitalName, got.BloodGroup)
	}
	if want := time.Date(2026, 12, 24, 8, 0, 0, 0, time.UTC); !got.DonationDate.Equal(want) {
		t.Errorf("date = %v, want %v", got.DonationDate, want)
	}
}

func TestUpdate_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		from    models.RequestStatus
		to      string
		wantErr bool
	}{
		{"pending to canceled", models.RequestPending, "canceled", false},
		{"inprogress to done", models.RequestInProgress, "done", false},
		{"inprogress to canceled", models.RequestInProgress, "canceled", false},
		{"same status is a no-op", models.RequestDone, "done", false},
		{"done to pending", models.RequestDone, "pending", true},
		{"canceled to inprogress", models.RequestCanceled, "inprogress", true},
		{"pending to done", models.RequestPending, "done", true},
		{"pending to inprogress is reserved for donate", models.RequestPending, "inprogress", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv()
			admin := e.caller(models.RoleAdmin)
			dr := e.seed(primitive.NewObjectID(), tt.from)

			got, err := e.mgr.Update(context.Background(), admin, dr.ID.Hex(), lifecycle.Patch{Status: strp(tt.to)})
			if tt.wantErr {
				wantKind(t, err, apperr.KindInvalidOperation,
					"Cannot change status from "+string(tt.from)+" to "+tt.to)
				if s := e.requests.get(dr.ID).Status; s != tt.from {
					t.Errorf("status changed to %q", s)
				}
				return
			}
			if err != nil {
				t.Fatalf("Update: %v", err)
			}
			if string(got.Status) != tt.to {
				t.Errorf("status = %q, want %q", got.Status, tt.to)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	owner := e.caller(models.RoleDonor)
	vol := e.caller(models.RoleVolunteer)
	admin := e.caller(models.RoleAdmin)
	a := e.seed(owner.ID, models.RequestPending)
	b := e.seed(owner.ID, models.RequestPending)

	err := e.mgr.Delete(ctx, vol, a.ID.Hex())
	wantKind(t, err, apperr.KindForbidden, "You can only delete your own donation requests")

	if err := e.mgr.Delete(ctx, owner, a.ID.Hex()); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if err := e.mgr.Delete(ctx, admin, b.ID.Hex()); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	err = e.mgr.Delete(ctx, admin, b.ID.Hex())
	wantKind(t, err, apperr.KindNotFound, "")
}

func TestDonate(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	owner := e.caller(models.RoleDonor)
	helper := e.caller(models.RoleDonor)
	dr := e.seed(owner.ID, models.RequestPending)

	_, err := e.mgr.Donate(ctx, owner, dr.ID.Hex())
	wantKind(t, err, apperr.KindInvalidOperation, "You cannot donate to your own request")

	blocked := e.caller(models.RoleDonor)
	blocked.Status = models.StatusBlocked
	_, err = e.mgr.Donate(ctx, blocked, dr.ID.Hex())
	wantKind(t, err, apperr.KindForbidden, "")

	got, err := e.mgr.Donate(ctx, helper, dr.ID.Hex())
	if err != nil {
		t.Fatalf("Donate: %v", err)
	}
	if got.Status != models.RequestInProgress {
		t.Errorf("status = %q, want inprogress", got.Status)
	}
	if got.Donor == nil || got.Donor.ID != helper.ID {
		t.Fatalf("donor not set: %+v", got.Donor)
	}
	if got.Donor.District != "" {
		t.Errorf("donor expansion should not carry location")
	}

	late := e.caller(models.RoleVolunteer)
	_, err = e.mgr.Donate(ctx, late, dr.ID.Hex())
	wantKind(t, err, apperr.KindConflict, "This donation request is no longer available")
	if d := e.requests.get(dr.ID).Donor; d == nil || *d != helper.ID {
		t.Errorf("donor overwritten by a late donate")
	}
}

func TestRecentAndCount(t *testing.T) {
	e := newEnv()
	ctx := context.Background()
	me := e.caller(models.RoleDonor)
	for i := 0; i < 5; i++ {
		dr := e.seed(me.ID, models.RequestPending)
		dr.CreatedAt = time.Now().Add(time.Duration(i) * time.Minute)
		e.requests.put(dr)
	}
	e.seed(primitive.NewObjectID(), models.RequestPending)

	recent, err := e.mgr.Recent(ctx, me.ID, 3)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("got %d, want 3", len(recent))
	}
	if !recent[0].CreatedAt.After(recent[1].CreatedAt) {
		t.Error("recent requests are not newest first")
	}
	if n, _ := e.mgr.Count(ctx); n != 6 {
		t.Errorf("count = %d, want 6", n)
	}
}
