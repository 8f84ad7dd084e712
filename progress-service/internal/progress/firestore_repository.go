package progress

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/NdumisoButhelezi/skill-up-connect-hub/progress-service/internal/scoring"
	"github.com/NdumisoButhelezi/skill-up-connect-hub/shared-libs/docstore"
)

type firestoreRepository struct {
	client *firestore.Client
}

// NewFirestoreRepository creates a new Firestore repository
func NewFirestoreRepository(client *firestore.Client) Repository {
	return &firestoreRepository{client: client}
}

func (r *firestoreRepository) ListParticipants(ctx context.Context) ([]scoring.Participant, error) {
	iter := r.client.Collection(docstore.CollectionUsers).
		Where(docstore.FieldRole, "==", RoleJobSeeker).
		Documents(ctx)
	defer iter.Stop()

	var participants []scoring.Participant
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		participants = append(participants, scoring.Participant{
			UserID: doc.Ref.ID,
			Email:  strings.TrimSpace(docstore.String(doc.Data()[docstore.FieldEmail])),
		})
	}
	return participants, nil
}

func (r *firestoreRepository) ListUserReflections(ctx context.Context, userID string) ([]Reflection, error) {
	iter := r.client.Collection(docstore.CollectionReflections).
		Where(docstore.FieldUserID, "==", userID).
		Documents(ctx)
	defer iter.Stop()

	var reflections []Reflection
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		reflections = append(reflections, reflectionFromData(doc.Ref.ID, doc.Data()))
	}
	return reflections, nil
}

// reflectionFromData decodes field by field so one malformed value does not drop the document.
func reflectionFromData(id string, data map[string]any) Reflection {
	reflection := Reflection{
		ID:          id,
		UserID:      docstore.String(data[docstore.FieldUserID]),
		LessonID:    docstore.String(data[docstore.FieldLessonID]),
		WorkshopID:  docstore.String(data[docstore.FieldWorkshopID]),
		Content:     docstore.String(data["content"]),
		Status:      scoring.ReflectionStatus(docstore.String(data[docstore.FieldStatus])),
		Points:      docstore.IntPtr(data[docstore.FieldPoints]),
		SubmittedAt: docstore.Time(data[docstore.FieldSubmittedAt]),
	}
	if reviewed := docstore.Time(data[docstore.FieldReviewedAt]); !reviewed.IsZero() {
		reflection.ReviewedAt = &reviewed
	}
	return reflection
}

func (r *firestoreRepository) GetUser(ctx context.Context, userID string) (User, error) {
	doc, err := r.client.Collection(docstore.CollectionUsers).Doc(userID).Get(ctx)
	if docstore.IsNotFound(err) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	data := doc.Data()
	return User{
		ID:    userID,
		Email: docstore.String(data[docstore.FieldEmail]),
		Role:  docstore.String(data[docstore.FieldRole]),
	}, nil
}

func (r *firestoreRepository) CountWorkshopsCreatedBy(ctx context.Context, userID string) (int, error) {
	q := r.client.Collection(docstore.CollectionWorkshops).Where(docstore.FieldCreatedBy, "==", userID)
	return docstore.Count(ctx, q)
}

func (r *firestoreRepository) LessonTitles(ctx context.Context, ids []string) (map[string]string, error) {
	return r.titles(ctx, docstore.CollectionLessons, ids)
}

func (r *firestoreRepository) WorkshopTitles(ctx context.Context, ids []string) (map[string]string, error) {
	return r.titles(ctx, docstore.CollectionWorkshops, ids)
}

func (r *firestoreRepository) titles(ctx context.Context, collection string, ids []string) (map[string]string, error) {
	titles := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return titles, nil
	}
	refs := make([]*firestore.DocumentRef, 0, len(ids))
	for _, id := range ids {
		refs = append(refs, r.client.Collection(collection).Doc(id))
	}
	docs, err := r.client.GetAll(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", collection, err)
	}
	for _, doc := range docs {
		if !doc.Exists() {
			continue
		}
		titles[doc.Ref.ID] = docstore.String(doc.Data()["title"])
	}
	return titles, nil
}
