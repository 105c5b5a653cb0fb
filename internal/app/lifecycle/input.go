package lifecycle

import (
	"strings"
	"time"

	requeststore "github.com/dalemusser/bloodlink/internal/app/store/donationrequests"
	"github.com/dalemusser/bloodlink/internal/app/system/apperr"
	"github.com/dalemusser/bloodlink/internal/app/system/htmlsanitize"
	"github.com/dalemusser/bloodlink/internal/app/system/inputval"
	"github.com/dalemusser/bloodlink/internal/domain/models"
)

// Input is the body of a create request.
type Input struct {
	RecipientName     string `json:"recipientName" validate:"min=2,max=100" label:"Recipient name"`
	RecipientDistrict string `json:"recipientDistrict" validate:"max=100" label:"Recipient district"`
	RecipientUpazila  string `json:"recipientUpazila" validate:"max=100" label:"Recipient upazila"`
	HospitalName      string `json:"hospitalName" validate:"min=2,max=200" label:"Hospital name"`
	FullAddress       string `json:"fullAddress" validate:"min=5,max=500" label:"Full address"`
	BloodGroup        string `json:"bloodGroup" validate:"bloodgroup" label:"Blood group"`
	DonationDate      string `json:"donationDate" label:"Donation date"`
	DonationTime      string `json:"donationTime" validate:"max=20" label:"Donation time"`
	RequestMessage    string `json:"requestMessage" validate:"min=10,max=1000" label:"Request message"`
}

func (in Input) missing() bool {
	for _, s := range []string{
		in.RecipientName, in.RecipientDistrict, in.RecipientUpazila,
		in.HospitalName, in.FullAddress, in.BloodGroup,
		in.DonationDate, in.DonationTime, in.RequestMessage,
	} {
		if strings.TrimSpace(s) == "" {
			return true
		}
	}
	return false
}

func (in Input) toRequest() (models.DonationRequest, error) {
	if in.missing() {
		return models.DonationRequest{}, apperr.Validation("All fields are required")
	}
	in = in.clean()
	if res := inputval.Validate(in); res.HasErrors() {
		return models.DonationRequest{}, apperr.Validation(res.First())
	}
	date, err := parseDate(in.DonationDate)
	if err != nil {
		return models.DonationRequest{}, err
	}
	bg, _ := models.NormalizeBloodGroup(in.BloodGroup)

	return models.DonationRequest{
		RecipientName:     in.RecipientName,
		RecipientDistrict: in.RecipientDistrict,
		RecipientUpazila:  in.RecipientUpazila,
		HospitalName:      in.HospitalName,
		FullAddress:       in.FullAddress,
		BloodGroup:        bg,
		DonationDate:      date,
		DonationTime:      in.DonationTime,
		RequestMessage:    in.RequestMessage,
	}, nil
}

func (in Input) clean() Input {
	in.RecipientName = htmlsanitize.PlainText(in.RecipientName)
	in.RecipientDistrict = strings.TrimSpace(in.RecipientDistrict)
	in.RecipientUpazila = strings.TrimSpace(in.RecipientUpazila)
	in.HospitalName = htmlsanitize.PlainText(in.HospitalName)
	in.FullAddress = htmlsanitize.PlainText(in.FullAddress)
	in.DonationTime = strings.TrimSpace(in.DonationTime)
	in.RequestMessage = htmlsanitize.PlainText(in.RequestMessage)
	return in
}

// Patch is the body of an update. Absent fields stay unchanged.
type Patch struct {
	RecipientName     *string `json:"recipientName" validate:"omitnil,min=2,max=100" label:"Recipient name"`
	RecipientDistrict *string `json:"recipientDistrict" validate:"omitnil,min=1,max=100" label:"Recipient district"`
	RecipientUpazila  *string `json:"recipientUpazila" validate:"omitnil,min=1,max=100" label:"Recipient upazila"`
	HospitalName      *string `json:"hospitalName" validate:"omitnil,min=2,max=200" label:"Hospital name"`
	FullAddress       *string `json:"fullAddress" validate:"omitnil,min=5,max=500" label:"Full address"`
	BloodGroup        *string `json:"bloodGroup" validate:"omitnil,bloodgroup" label:"Blood group"`
	DonationDate      *string `json:"donationDate" label:"Donation date"`
	DonationTime      *string `json:"donationTime" validate:"omitnil,min=1,max=20" label:"Donation time"`
	RequestMessage    *string `json:"requestMessage" validate:"omitnil,min=10,max=1000" label:"Request message"`
	Status            *string `json:"status" label:"Status"`
}

func (p Patch) toUpdate() (requeststore.Update, error) {
	sanitize := func(s *string, f func(string) string) *string {
		if s == nil {
			return nil
		}
		v := f(*s)
		return &v
	}
	p.RecipientName = sanitize(p.RecipientName, htmlsanitize.PlainText)
	p.RecipientDistrict = sanitize(p.RecipientDistrict, strings.TrimSpace)
	p.RecipientUpazila = sanitize(p.RecipientUpazila, strings.TrimSpace)
	p.HospitalName = sanitize(p.HospitalName, htmlsanitize.PlainText)
	p.FullAddress = sanitize(p.FullAddress, htmlsanitize.PlainText)
	p.DonationTime = sanitize(p.DonationTime, strings.TrimSpace)
	p.RequestMessage = sanitize(p.RequestMessage, htmlsanitize.PlainText)

	if res := inputval.Validate(p); res.HasErrors() {
		return requeststore.Update{}, apperr.Validation(res.First())
	}

	upd := requeststore.Update{
		RecipientName:     p.RecipientName,
		RecipientDistrict: p.RecipientDistrict,
		RecipientUpazila:  p.RecipientUpazila,
		HospitalName:      p.HospitalName,
		FullAddress:       p.FullAddress,
		DonationTime:      p.DonationTime,
		RequestMessage:    p.RequestMessage,
	}
	if p.BloodGroup != nil {
		bg, _ := models.NormalizeBloodGroup(*p.BloodGroup)
		upd.BloodGroup = &bg
	}
	if p.DonationDate != nil {
		d, err := parseDate(*p.DonationDate)
		if err != nil {
			return requeststore.Update{}, err
		}
		upd.DonationDate = &d
	}
	if p.Status != nil {
		st := models.RequestStatus(strings.TrimSpace(*p.Status))
		if !st.Valid() {
			return requeststore.Update{}, apperr.Validation("Invalid status value")
		}
		upd.Status = &st
	}
	return upd, nil
}

var dateLayouts = []string{time.RFC3339, "2006-01-02"}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return models.StoredTime(t), nil
		}
	}
	return time.Time{}, apperr.Validation("Invalid donation date")
}
