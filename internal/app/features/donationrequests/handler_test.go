package donationrequests_test

import (
	"net/http"
	"testing"

	"github.com/dalemusser/bloodlink/internal/app/features/donationrequests"
	"github.com/dalemusser/bloodlink/internal/app/lifecycle"
	requeststore "github.com/dalemusser/bloodlink/internal/app/store/donationrequests"
	userstore "github.com/dalemusser/bloodlink/internal/app/store/users"
	"github.com/dalemusser/bloodlink/internal/domain/models"
	"github.com/dalemusser/bloodlink/internal/testutil"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func newTestRouter(t *testing.T) (http.Handler, *testutil.Fixtures) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	mgr := lifecycle.New(requeststore.New(db), userstore.New(db), logger)
	h := donationrequests.NewHandler(mgr, logger)

	r := chi.NewRouter()
	r.Mount("/api/donation-requests", donationrequests.Routes(h))
	return r, testutil.NewFixtures(t, db)
}

func serve(h http.Handler, req *http.Request) *testutil.ResponseRecorder {
	rec := testutil.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func createBody() map[string]any {
	return map[string]any{
		"recipientName":     "Shirin Akter",
		"recipientDistrict": "Sylhet",
		"recipientUpazila":  "Beanibazar",
		"hospitalName":      "Sylhet MAG Osmani Medical College",
		"fullAddress":       "Medical College Road, Sylhet",
		"bloodGroup":        "B-",
		"donationDate":      "2026-11-20",
		"donationTime":      "08:30",
		"requestMessage":    "Patient is in the ICU and needs two bags",
	}
}

func TestCreate_RequiresToken(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := serve(router, testutil.NewJSONRequest(t, http.MethodPost, "/api/donation-requests", createBody()))
	rec.AssertStatus(t, http.StatusUnauthorized)
	rec.AssertMessage(t, "No token, authorization denied")
}

func TestCreateThenGet(t *testing.T) {
	router, fx := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	owner := fx.CreateUser(ctx, "Owner", "owner@example.com", testutil.UserOpts{District: "Sylhet", Upazila: "Beanibazar"})

	in := createBody()
	in["donationDate"] = "2026-11-20T08:30:00.123456789+06:00"
	rec := serve(router, testutil.NewAuthenticatedRequest(t, http.MethodPost, "/api/donation-requests", in, testutil.AsTestUser(owner)))
	rec.AssertStatus(t, http.StatusCreated)
	body := rec.JSON(t)
	if body["message"] != "Donation request created successfully" {
		t.Errorf("message = %v", body["message"])
	}
	dr, _ := body["donationRequest"].(map[string]any)
	id, _ := dr["_id"].(string)
	if id == "" {
		t.Fatalf("no id in response: %v", body)
	}

	rec = serve(router, testutil.NewJSONRequest(t, http.MethodGet, "/api/donation-requests/"+id, nil))
	rec.AssertStatus(t, http.StatusOK)
	got, _ := rec.JSON(t)["donationRequest"].(map[string]any)
	for _, k := range []string{"recipientName", "hospitalName", "bloodGroup", "donationTime", "donationDate", "createdAt", "updatedAt"} {
		if got[k] != dr[k] {
			t.Errorf("%s: got %v, want %v", k, got[k], dr[k])
		}
	}
	if got["status"] != "pending" {
		t.Errorf("status = %v", got["status"])
	}
	if got["donationDate"] != "2026-11-20T02:30:00.123Z" {
		t.Errorf("donationDate = %v, want millisecond UTC", got["donationDate"])
	}
	requester, _ := got["requester"].(map[string]any)
	if requester["name"] != "Owner" || requester["district"] != "Sylhet" {
		t.Errorf("requester = %v", requester)
	}
	if _, ok := requester["password"]; ok {
		t.Error("requester exposes a password field")
	}
}

func TestCreate_BlockedUser(t *testing.T) {
	router, fx := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	blocked := fx.CreateBlockedUser(ctx, "Blocked", "blocked@example.com")

	rec := serve(router, testutil.NewAuthenticatedRequest(t, http.MethodPost, "/api/donation-requests", createBody(), testutil.AsTestUser(blocked)))
	rec.AssertStatus(t, http.StatusForbidden)
	rec.AssertMessage(t, "Your account is blocked. You cannot create donation requests.")
}

func TestCreate_MissingField(t *testing.T) {
	router, fx := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	u := fx.CreateUser(ctx, "Someone", "someone@example.com", testutil.UserOpts{})

	body := createBody()
	delete(body, "hospitalName")
	rec := serve(router, testutil.NewAuthenticatedRequest(t, http.MethodPost, "/api/donation-requests", body, testutil.AsTestUser(u)))
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertMessage(t, "All fields are required")
}

func TestGet_NotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := serve(router, testutil.NewJSONRequest(t, http.MethodGet, "/api/donation-requests/"+primitive.NewObjectID().Hex(), nil))
	rec.AssertStatus(t, http.StatusNotFound)
	rec.AssertMessage(t, "Donation request not found")
}

func TestUpdate_OtherDonorForbidden(t *testing.T) {
	router, fx := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	owner := fx.CreateUser(ctx, "Owner", "owner@example.com", testutil.UserOpts{})
	other := fx.CreateUser(ctx, "Other", "other@example.com", testutil.UserOpts{})
	dr := fx.CreateDonationRequest(ctx, owner.ID, models.RequestPending, nil)

	req := testutil.NewAuthenticatedRequest(t, http.MethodPut, "/api/donation-requests/"+dr.ID.Hex(),
		map[string]any{"hospitalName": "Changed Hospital"}, testutil.AsTestUser(other))
	rec := serve(router, req)
	rec.AssertStatus(t, http.StatusForbidden)
	rec.AssertMessage(t, "You can only update your own donation requests")
}

func TestUpdate_VolunteerStatus(t *testing.T) {
	router, fx := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	owner := fx.CreateUser(ctx, "Owner", "owner@example.com", testutil.UserOpts{})
	vol := fx.CreateVolunteer(ctx, "Vol", "vol@example.com")
	dr := fx.CreateDonationRequest(ctx, owner.ID, models.RequestPending, nil)

	req := testutil.NewAuthenticatedRequest(t, http.MethodPut, "/api/donation-requests/"+dr.ID.Hex(),
		map[string]any{"status": "canceled", "hospitalName": "Ignored"}, testutil.AsTestUser(vol))
	rec := serve(router, req)
	rec.AssertStatus(t, http.StatusOK)
	got, _ := rec.JSON(t)["donationRequest"].(map[string]any)
	if got["status"] != "canceled" || got["hospitalName"] != dr.HospitalName {
		t.Errorf("got status %v hospital %v", got["status"], got["hospitalName"])
	}
}

func TestDonate(t *testing.T) {
	router, fx := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	owner := fx.CreateUser(ctx, "Owner", "owner@example.com", testutil.UserOpts{})
	donor := fx.CreateUser(ctx, "Donor", "donor@example.com", testutil.UserOpts{})
	dr := fx.CreateDonationRequest(ctx, owner.ID, models.RequestPending, nil)
	path := "/api/donation-requests/" + dr.ID.Hex() + "/donate"

	rec := serve(router, testutil.NewAuthenticatedRequest(t, http.MethodPost, path, nil, testutil.AsTestUser(owner)))
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertMessage(t, "You cannot donate to your own request")

	rec = serve(router, testutil.NewAuthenticatedRequest(t, http.MethodPost, path, nil, testutil.AsTestUser(donor)))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertMessage(t, "Thank you for your donation!")

	rec = serve(router, testutil.NewAuthenticatedRequest(t, http.MethodPost, path, nil, testutil.AsTestUser(donor)))
	rec.AssertStatus(t, http.StatusBadRequest)
	rec.AssertMessage(t, "This donation request is no longer available")
}

func TestDelete(t *testing.T) {
	router, fx := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	owner := fx.CreateUser(ctx, "Owner", "owner@example.com", testutil.UserOpts{})
	other := fx.CreateUser(ctx, "Other", "other@example.com", testutil.UserOpts{})
	dr := fx.CreateDonationRequest(ctx, owner.ID, models.RequestPending, nil)
	path := "/api/donation-requests/" + dr.ID.Hex()

	rec := serve(router, testutil.NewAuthenticatedRequest(t, http.MethodDelete, path, nil, testutil.AsTestUser(other)))
	rec.AssertStatus(t, http.StatusForbidden)

	rec = serve(router, testutil.NewAuthenticatedRequest(t, http.MethodDelete, path, nil, testutil.AsTestUser(owner)))
	rec.AssertStatus(t, http.StatusOK)
	rec.AssertMessage(t, "Donation request deleted successfully")

	rec = serve(router, testutil.NewJSONRequest(t, http.MethodGet, path, nil))
	rec.AssertStatus(t, http.StatusNotFound)
}

func TestList_DonorSeesOwnOnly(t *testing.T) {
	router, fx := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	me := fx.CreateUser(ctx, "Me", "me@example.com", testutil.UserOpts{})
	other := fx.CreateUser(ctx, "Other", "other@example.com", testutil.UserOpts{})
	fx.CreateDonationRequest(ctx, me.ID, models.RequestPending, nil)
	fx.CreateDonationRequest(ctx, other.ID, models.RequestPending, nil)

	rec := serve(router, testutil.NewAuthenticatedRequest(t, http.MethodGet,
		"/api/donation-requests?requesterId="+other.ID.Hex(), nil, testutil.AsTestUser(me)))
	rec.AssertStatus(t, http.StatusOK)
	page, _ := rec.JSON(t)["donationRequests"].(map[string]any)
	if page["totalDocs"] != float64(1) {
		t.Errorf("totalDocs = %v, want 1", page["totalDocs"])
	}
}

func TestPublic(t *testing.T) {
	router, fx := newTestRouter(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	owner := fx.CreateUser(ctx, "Owner", "owner@example.com", testutil.UserOpts{})
	fx.CreateDonationRequest(ctx, owner.ID, models.RequestPending, nil)
	fx.CreateDonationRequest(ctx, owner.ID, models.RequestDone, nil)

	rec := serve(router, testutil.NewJSONRequest(t, http.MethodGet, "/api/donation-requests/public?bloodGroup=O%2B", nil))
	rec.AssertStatus(t, http.StatusOK)
	page, _ := rec.JSON(t)["donationRequests"].(map[string]any)
	if page["totalDocs"] != float64(1) {
		t.Errorf("totalDocs = %v, want 1", page["totalDocs"])
	}
}
