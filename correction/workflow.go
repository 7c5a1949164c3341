package correction

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/rodrigoinhaia/DiinPonto/core/models"
)

// MinReasonLength rejects throwaway justifications at the edge.
const MinReasonLength = 10

var (
	ErrDuplicatePending = errors.New("a pending correction request already exists for this record")
	ErrAlreadyProcessed = errors.New("this correction request has already been processed")
	ErrForbidden        = errors.New("insufficient privilege for this correction")
	ErrNotFound         = errors.New("correction request not found")
	ErrRecordNotFound   = errors.New("time record not found")
	ErrReasonTooShort   = fmt.Errorf("reason must be at least %d characters", MinReasonLength)
	ErrInvalidDecision  = errors.New("decision must be APPROVED or REJECTED")
)

type RequestOptions struct {
	RequesterID  string
	TimeRecordID string
	Reason       string
	Evidence     *string
	NewTimestamp *time.Time
}

// Request creates a correction request for a punch. Employees may only
// request corrections on their own punches and the request stays
// PENDING; a MANAGER or ADMIN requester is auto-approved and the punch
// timestamp is rewritten in the same transaction, so no intermediate
// PENDING state is ever observable.
func Request(db *gorm.DB, opts RequestOptions) (*models.CorrectionRequest, error) {
	if len(strings.TrimSpace(opts.Reason)) < MinReasonLength {
		return nil, ErrReasonTooShort
	}

	requester, err := models.FindUserByID(db, opts.RequesterID)
	if err != nil {
		return nil, err
	}
	if requester == nil {
		return nil, ErrForbidden
	}

	var record models.TimeRecord
	err = db.First(&record, "id = ?", opts.TimeRecordID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrRecordNotFound
	}
	if err != nil {
		return nil, err
	}

	isOwner := record.UserID == opts.RequesterID
	isPrivileged := requester.Role == models.RoleManager || requester.Role == models.RoleAdmin
	if !isOwner && !isPrivileged {
		return nil, ErrForbidden
	}

	request := &models.CorrectionRequest{
		TimeRecordID:  opts.TimeRecordID,
		RequestedByID: opts.RequesterID,
		Reason:        opts.Reason,
		Evidence:      opts.Evidence,
		NewTimestamp:  opts.NewTimestamp,
		Status:        models.CorrectionPending,
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		var pending int64
		if err := tx.Model(&models.CorrectionRequest{}).
			Where("time_record_id = ? AND status = ?", opts.TimeRecordID, models.CorrectionPending).
			Count(&pending).Error; err != nil {
			return err
		}
		if pending > 0 {
			return ErrDuplicatePending
		}

		if isPrivileged {
			request.Status = models.CorrectionApproved
			request.ApprovedByID = &opts.RequesterID
		}

		if err := tx.Create(request).Error; err != nil {
			return err
		}

		if isPrivileged && opts.NewTimestamp != nil {
			if err := tx.Model(&models.TimeRecord{}).
				Where("id = ?", opts.TimeRecordID).
				Update("timestamp", *opts.NewTimestamp).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return Find(db, request.ID)
}

// Decide transitions a PENDING request to APPROVED or REJECTED. A
// MANAGER decider must manage a department the punch owner belongs to;
// an ADMIN may decide anything. Approval rewrites the punch timestamp
// and updates the request atomically.
func Decide(db *gorm.DB, correctionID, deciderID string, decision models.CorrectionStatus, rejectionReason *string) (*models.CorrectionRequest, error) {
	if decision != models.CorrectionApproved && decision != models.CorrectionRejected {
		return nil, ErrInvalidDecision
	}

	decider, err := models.FindUserByID(db, deciderID)
	if err != nil {
		return nil, err
	}
	if decider == nil || (decider.Role != models.RoleManager && decider.Role != models.RoleAdmin) {
		return nil, ErrForbidden
	}

	var request models.CorrectionRequest
	err = db.Preload("TimeRecord.User").First(&request, "id = ?", correctionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if decider.Role == models.RoleManager {
		ok, err := managesUser(db, deciderID, &request.TimeRecord.User)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrForbidden
		}
	}

	if request.Status != models.CorrectionPending {
		return nil, ErrAlreadyProcessed
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":         decision,
			"approved_by_id": deciderID,
		}
		if decision == models.CorrectionRejected && rejectionReason != nil && *rejectionReason != "" {
			// Append for audit continuity, never overwrite.
			updates["reason"] = request.Reason + "\n[rejected] " + *rejectionReason
		}

		// Guard against a concurrent decision on the same request.
		res := tx.Model(&models.CorrectionRequest{}).
			Where("id = ? AND status = ?", correctionID, models.CorrectionPending).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrAlreadyProcessed
		}

		if decision == models.CorrectionApproved && request.NewTimestamp != nil {
			if err := tx.Model(&models.TimeRecord{}).
				Where("id = ?", request.TimeRecordID).
				Update("timestamp", *request.NewTimestamp).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return Find(db, correctionID)
}

type ListFilters struct {
	Status *models.CorrectionStatus
	UserID *string
}

// List returns correction requests visible to the viewer, newest first.
// Employees see their own, managers see their departments', admins see
// everything.
func List(db *gorm.DB, viewerID string, filters ListFilters) ([]models.CorrectionRequest, error) {
	viewer, err := models.FindUserByID(db, viewerID)
	if err != nil {
		return nil, err
	}
	if viewer == nil {
		return nil, ErrForbidden
	}

	q := db.Model(&models.CorrectionRequest{}).
		Preload("TimeRecord.User").
		Preload("RequestedBy").
		Preload("ApprovedBy").
		Order("created_at desc")

	switch viewer.Role {
	case models.RoleEmployee:
		q = q.Where("requested_by_id = ?", viewerID)
	case models.RoleManager:
		q = q.Where("requested_by_id IN (?)",
			db.Model(&models.User{}).Select("users.id").
				Joins("JOIN departments ON departments.id = users.department_id").
				Where("departments.manager_id = ?", viewerID))
	}

	if filters.Status != nil && filters.Status.Valid() {
		q = q.Where("correction_requests.status = ?", *filters.Status)
	}
	if filters.UserID != nil && viewer.Role != models.RoleEmployee {
		q = q.Where("requested_by_id = ?", *filters.UserID)
	}

	var requests []models.CorrectionRequest
	if err := q.Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// Delete removes a correction request. Allowed for the original
// requester while the request is still PENDING, or for an ADMIN in any
// state.
func Delete(db *gorm.DB, deleterID, correctionID string) error {
	deleter, err := models.FindUserByID(db, deleterID)
	if err != nil {
		return err
	}
	if deleter == nil {
		return ErrForbidden
	}

	var request models.CorrectionRequest
	err = db.First(&request, "id = ?", correctionID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}

	if deleter.Role != models.RoleAdmin {
		if request.RequestedByID != deleterID || request.Status != models.CorrectionPending {
			return ErrForbidden
		}
	}

	return db.Delete(&models.CorrectionRequest{}, "id = ?", correctionID).Error
}

// FindFor loads a request only if the viewer may see it: the requester,
// the punch owner, a manager of the owner's department, or an admin.
// Anyone else gets ErrForbidden, mirroring the List scoping.
func FindFor(db *gorm.DB, viewerID, id string) (*models.CorrectionRequest, error) {
	viewer, err := models.FindUserByID(db, viewerID)
	if err != nil {
		return nil, err
	}
	if viewer == nil {
		return nil, ErrForbidden
	}

	request, err := Find(db, id)
	if err != nil {
		return nil, err
	}

	if viewer.Role == models.RoleAdmin {
		return request, nil
	}
	if request.RequestedByID == viewerID || request.TimeRecord.UserID == viewerID {
		return request, nil
	}
	if viewer.Role == models.RoleManager {
		ok, err := managesUser(db, viewerID, &request.TimeRecord.User)
		if err != nil {
			return nil, err
		}
		if ok {
			return request, nil
		}
	}
	return nil, ErrForbidden
}

// Find loads a request with its associations.
func Find(db *gorm.DB, id string) (*models.CorrectionRequest, error) {
	var request models.CorrectionRequest
	err := db.Preload("TimeRecord.User").
		Preload("RequestedBy").
		Preload("ApprovedBy").
		First(&request, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &request, nil
}

func managesUser(db *gorm.DB, managerID string, user *models.User) (bool, error) {
	if user.DepartmentID == nil {
		return false, nil
	}
	var count int64
	err := db.Model(&models.Department{}).
		Where("id = ? AND manager_id = ?", *user.DepartmentID, managerID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
