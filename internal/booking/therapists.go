package booking

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"github.com/chachabrian/hilot-backend/internal/models"
	"github.com/chachabrian/hilot-backend/internal/repository"
	"github.com/sirupsen/logrus"
)

const licenseFolder = "licenses"

// DocumentStore keeps uploaded onboarding documents and returns their URL.
type DocumentStore interface {
	Upload(ctx context.Context, file *multipart.FileHeader, folder string) (string, error)
}

type ApplyInput struct {
	DisplayName string
	Bio         string
	Specialties string
	License     *multipart.FileHeader
}

// Apply opens a pending therapist application for userID.
func (s *Service) Apply(ctx context.Context, userID uint, in ApplyInput, docs DocumentStore) (*models.Therapist, error) {
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	if in.DisplayName == "" {
		return nil, validation("displayName is required")
	}

	if _, err := s.repo.FindUserByID(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("User not found")
		}
		return nil, internal("Failed to load user", err)
	}

	if _, err := s.repo.FindTherapistByUserID(ctx, userID); err == nil {
		return nil, conflict("A therapist profile already exists for this account")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, internal("Failed to load therapist profile", err)
	}

	t := &models.Therapist{
		UserID:      userID,
		DisplayName: in.DisplayName,
		Bio:         strings.TrimSpace(in.Bio),
		Specialties: strings.TrimSpace(in.Specialties),
		Status:      models.TherapistPending,
	}

	if in.License != nil && docs != nil {
		url, err := docs.Upload(ctx, in.License, licenseFolder)
		if err != nil {
			return nil, internal("Failed to upload license", err)
		}
		t.LicenseURL = url
	}

	if err := s.repo.CreateTherapist(ctx, t); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflict("A therapist profile already exists for this account")
		}
		return nil, internal("Failed to create therapist profile", err)
	}

	s.log.WithFields(logrus.Fields{"therapist_id": t.ID, "user_id": userID}).Info("therapist application received")
	return t, nil
}

// PendingTherapists is the admin approval queue, oldest first.
func (s *Service) PendingTherapists(ctx context.Context) ([]models.Therapist, error) {
	return s.therapistsByStatus(ctx, models.TherapistPending)
}

// ApprovedTherapists are the bookable therapists.
func (s *Service) ApprovedTherapists(ctx context.Context) ([]models.Therapist, error) {
	return s.therapistsByStatus(ctx, models.TherapistApproved)
}

func (s *Service) therapistsByStatus(ctx context.Context, status models.TherapistStatus) ([]models.Therapist, error) {
	list, err := s.repo.ListTherapistsByStatus(ctx, status)
	if err != nil {
		return nil, internal("Failed to load therapists", err)
	}
	if list == nil {
		list = []models.Therapist{}
	}
	return list, nil
}

// ReviewTherapist approves or rejects a pending application. Approval
// promotes a client account to the therapist role.
func (s *Service) ReviewTherapist(ctx context.Context, therapistID uint, approve bool, note string) (*models.Therapist, error) {
	var reviewed *models.Therapist
	err := s.repo.Transaction(ctx, func(tx repository.Repository) error {
		t, err := tx.FindTherapistByID(ctx, therapistID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return notFound("Therapist not found")
			}
			return err
		}
		if t.Status != models.TherapistPending {
			return conflict("Application has already been reviewed")
		}

		now := s.now()
		t.ReviewedAt = &now
		t.ReviewNote = strings.TrimSpace(note)
		t.Status = models.TherapistRejected
		if approve {
			t.Status = models.TherapistApproved
		}
		if err := tx.SaveTherapist(ctx, t); err != nil {
			return err
		}

		if approve {
			u, err := tx.FindUserByID(ctx, t.UserID)
			if err != nil {
				return err
			}
			if u.Role == models.RoleClient {
				u.Role = models.RoleTherapist
				if err := tx.SaveUser(ctx, u); err != nil {
					return err
				}
			}
		}
		reviewed = t
		return nil
	})
	if err != nil {
		var berr *Error
		if errors.As(err, &berr) {
			return nil, berr
		}
		return nil, internal("Failed to review therapist", err)
	}

	s.log.WithFields(logrus.Fields{
		"therapist_id": reviewed.ID,
		"status":       reviewed.Status,
	}).Info("therapist application reviewed")
	return reviewed, nil
}

// Services lists the catalog.
func (s *Service) Services(ctx context.Context) ([]models.Service, error) {
	list, err := s.repo.ListServices(ctx)
	if err != nil {
		return nil, internal("Failed to load services", err)
	}
	if list == nil {
		list = []models.Service{}
	}
	return list, nil
}
