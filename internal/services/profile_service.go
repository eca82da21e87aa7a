package services

import (
	"context"
	"strings"
	"time"

	"railway/internal/domain"
	"railway/internal/domain/models"
	"railway/internal/utils"
)

// ProfileStore is the account storage behind the profile pages.
type ProfileStore interface {
	UserProfile(ctx context.Context, userID string) (models.UserProfile, error)
	UpdateUserProfile(ctx context.Context, userID string, u models.ProfileUpdate) error
	UserStats(ctx context.Context, userID string) (models.UserStats, error)
	EmployeeProfile(ctx context.Context, employeeID string) (models.EmployeeProfile, error)
}

type ProfileService struct {
	Profiles  ProfileStore
	Location  *time.Location
	Now       func() time.Time
	RequestID string
}

// ProfileInput is the body of a profile update.
type ProfileInput struct {
	Name     string `json:"name" binding:"required,max=128"`
	MobileNo string `json:"mobile_no" binding:"omitempty,max=20"`
	Gender   string `json:"gender" binding:"omitempty,max=16"`
	DOB      string `json:"dob" binding:"omitempty,datetime=2006-01-02"`
	Address  string `json:"address" binding:"omitempty,max=255"`
	City     string `json:"city" binding:"omitempty,max=64"`
	State    string `json:"state" binding:"omitempty,max=64"`
	PinCode  string `json:"pin_code" binding:"omitempty,numeric,max=10"`
}

func (s ProfileService) loc() *time.Location {
	if s.Location != nil {
		return s.Location
	}
	return time.Local
}

func (s ProfileService) now() time.Time {
	if s.Now != nil {
		return s.Now().In(s.loc())
	}
	return time.Now().In(s.loc())
}

func requireUser(who domain.Principal) error {
	if who.Kind != models.OwnerUser {
		return domain.ValidationError{Field: "principal", Msg: "users only"}
	}
	return nil
}

func (s ProfileService) Profile(ctx context.Context, who domain.Principal) (models.UserProfile, error) {
	if err := requireUser(who); err != nil {
		return models.UserProfile{}, err
	}
	p, err := s.Profiles.UserProfile(ctx, who.ID)
	if err != nil {
		return models.UserProfile{}, err
	}
	if p.DOB != nil {
		age := utils.AgeOn(*p.DOB, s.now())
		p.Age = &age
	}
	return p, nil
}

func (s ProfileService) UpdateProfile(ctx context.Context, who domain.Principal, in ProfileInput) (models.UserProfile, error) {
	if err := requireUser(who); err != nil {
		return models.UserProfile{}, err
	}
	u := models.ProfileUpdate{
		Name:     utils.NormalizeSpace(in.Name),
		MobileNo: strings.TrimSpace(in.MobileNo),
		Gender:   strings.ToLower(strings.TrimSpace(in.Gender)),
		Address:  strings.TrimSpace(in.Address),
		City:     strings.TrimSpace(in.City),
		State:    strings.TrimSpace(in.State),
		PinCode:  strings.TrimSpace(in.PinCode),
	}
	if u.Name == "" {
		return models.UserProfile{}, domain.ValidationError{Field: "name", Msg: "must not be blank"}
	}
	if strings.TrimSpace(in.DOB) != "" {
		dob, err := utils.ParseDate(in.DOB, s.loc())
		if err != nil {
			return models.UserProfile{}, domain.ValidationError{Field: "dob", Msg: "must be YYYY-MM-DD", Err: err}
		}
		if dob.After(s.now()) {
			return models.UserProfile{}, domain.ValidationError{Field: "dob", Msg: "must not be in the future"}
		}
		u.DOB = &dob
	}
	if err := s.Profiles.UpdateUserProfile(ctx, who.ID, u); err != nil {
		return models.UserProfile{}, err
	}
	utils.LogEvent(s.RequestID, "profile", "update", "user_id="+who.ID)
	return s.Profile(ctx, who)
}

func (s ProfileService) Stats(ctx context.Context, who domain.Principal) (models.UserStats, error) {
	if err := requireUser(who); err != nil {
		return models.UserStats{}, err
	}
	return s.Profiles.UserStats(ctx, who.ID)
}

func (s ProfileService) EmployeeProfile(ctx context.Context, who domain.Principal) (models.EmployeeProfile, error) {
	if who.Kind != models.OwnerEmployee {
		return models.EmployeeProfile{}, domain.ValidationError{Field: "principal", Msg: "employees only"}
	}
	return s.Profiles.EmployeeProfile(ctx, who.ID)
}
