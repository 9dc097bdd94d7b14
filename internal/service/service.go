package service

import (
	"context"
	"time"

	"github.com/HanjuJo/nexo-v1/internal/apierror"
	"github.com/HanjuJo/nexo-v1/internal/dto"
	"github.com/HanjuJo/nexo-v1/internal/identity"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// runTx executes fn inside a database transaction.
// Inside fn only tx may be used for queries.
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	return db.WithContext(ctx).Transaction(fn)
}

func parseID(field, s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, apierror.Validation(field+" is not a valid id", map[string]string{field: "uuid"})
	}
	return id, nil
}

func parseOptionalID(field string, s *string) (*uuid.UUID, error) {
	if s == nil {
		return nil, nil
	}
	id, err := parseID(field, *s)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func parseDate(field string, s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(dto.DateLayout, *s)
	if err != nil {
		return nil, apierror.Validation(field+" must be YYYY-MM-DD", map[string]string{field: "datetime"})
	}
	return &t, nil
}

func formatTime(t time.Time) string { return t.Format(time.RFC3339) }

func formatTimePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := formatTime(*t)
	return &s
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dto.DateLayout)
	return &s
}

func idString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

// requireAdmin refuses callers without administrative rights.
func requireAdmin(who identity.Identity, action string) error {
	if !who.Admin() {
		return apierror.Forbidden("only administrators can " + action)
	}
	return nil
}

// notFoundAs translates a missing row into a not-found error naming what.
func notFoundAs(err error, what string) error {
	if apierror.Is(err, apierror.KindNotFound) {
		return apierror.NotFound(what + " not found")
	}
	return err
}
