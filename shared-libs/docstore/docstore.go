// Package docstore holds the Firestore collection layout shared by every service and helpers for
// reading loosely typed document fields.
package docstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Collection names.
const (
	CollectionUsers         = "users"
	CollectionWorkshops     = "workshops"
	CollectionLessons       = "lessons"
	CollectionRegistrations = "registrations"
	CollectionReflections   = "reflections"
)

// Field names used in queries across services.
const (
	FieldRole        = "role"
	FieldEmail       = "email"
	FieldUserID      = "userId"
	FieldWorkshopID  = "workshopId"
	FieldLessonID    = "lessonId"
	FieldStatus      = "status"
	FieldPoints      = "points"
	FieldCreatedBy   = "createdBy"
	FieldCreatedAt   = "createdAt"
	FieldSubmittedAt = "submittedAt"
	FieldReviewedAt  = "reviewedAt"
	FieldReviewedBy  = "reviewedBy"
)

// DefaultDatabase is the Firestore database used when none is configured.
const DefaultDatabase = firestore.DefaultDatabaseID

// Config selects the Firestore project and database.
type Config struct {
	ProjectID    string
	DatabaseID   string
	EmulatorHost string
}

// NewClient opens a Firestore client, pointing it at the emulator when one is configured.
func NewClient(ctx context.Context, cfg Config) (*firestore.Client, error) {
	if strings.TrimSpace(cfg.ProjectID) == "" {
		return nil, errors.New("firestore project id is required")
	}
	if cfg.EmulatorHost != "" {
		if err := os.Setenv("FIRESTORE_EMULATOR_HOST", cfg.EmulatorHost); err != nil {
			return nil, fmt.Errorf("set emulator host: %w", err)
		}
	}
	database := cfg.DatabaseID
	if database == "" {
		database = DefaultDatabase
	}
	client, err := firestore.NewClientWithDatabase(ctx, cfg.ProjectID, database)
	if err != nil {
		return nil, fmt.Errorf("firestore client: %w", err)
	}
	return client, nil
}

// IsNotFound reports whether err is a Firestore NotFound status.
func IsNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}

// IsAlreadyExists reports whether err is a Firestore AlreadyExists status.
func IsAlreadyExists(err error) bool {
	return status.Code(err) == codes.AlreadyExists
}

// Int reads a numeric field. Firestore returns integers as int64 and doubles as float64; anything
// else (missing, null, strings, booleans) is reported as absent.
func Int(value any) (int, bool) {
	switch v := value.(type) {
	case int64:
		return int(v), true
	case int:
		return v, true
	case int32:
		return int(v), true
	case float64:
		return int(v), true
	case float32:
		return int(v), true
	default:
		return 0, false
	}
}

// IntPtr is Int returning nil for absent values.
func IntPtr(value any) *int {
	v, ok := Int(value)
	if !ok {
		return nil
	}
	return &v
}

// String reads a string field, returning "" for anything else.
func String(value any) string {
	s, _ := value.(string)
	return s
}

// Strings reads an array of strings, skipping non-string items.
func Strings(value any) []string {
	switch v := value.(type) {
	case []string:
		return append([]string(nil), v...)
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// Time reads a timestamp field. Values written as ISO-8601 strings are parsed too.
func Time(value any) time.Time {
	switch v := value.(type) {
	case time.Time:
		return v.UTC()
	case string:
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
