package workshop

import (
	"context"
	"fmt"
	"sort"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/NdumisoButhelezi/skill-up-connect-hub/shared-libs/docstore"
)

const (
	fieldTitle        = "title"
	fieldDescription  = "description"
	fieldContent      = "content"
	fieldSkills       = "skills"
	fieldDifficulty   = "difficulty"
	fieldRegisteredAt = "registeredAt"
)

type firestoreRepository struct {
	client *firestore.Client
}

// NewFirestoreRepository creates a new Firestore repository
func NewFirestoreRepository(client *firestore.Client) Repository {
	return &firestoreRepository{client: client}
}

func (r *firestoreRepository) GetMember(ctx context.Context, userID string) (Member, error) {
	doc, err := r.client.Collection(docstore.CollectionUsers).Doc(userID).Get(ctx)
	if docstore.IsNotFound(err) {
		return Member{}, ErrNotFound
	}
	if err != nil {
		return Member{}, err
	}
	return memberFromData(userID, doc.Data()), nil
}

func (r *firestoreRepository) GetMembers(ctx context.Context, userIDs []string) (map[string]Member, error) {
	members := make(map[string]Member, len(userIDs))
	if len(userIDs) == 0 {
		return members, nil
	}
	refs := make([]*firestore.DocumentRef, 0, len(userIDs))
	for _, id := range userIDs {
		refs = append(refs, r.client.Collection(docstore.CollectionUsers).Doc(id))
	}
	docs, err := r.client.GetAll(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	for _, doc := range docs {
		if !doc.Exists() {
			continue
		}
		members[doc.Ref.ID] = memberFromData(doc.Ref.ID, doc.Data())
	}
	return members, nil
}

func memberFromData(id string, data map[string]any) Member {
	return Member{
		UserID: id,
		Email:  docstore.String(data[docstore.FieldEmail]),
		Role:   docstore.String(data[docstore.FieldRole]),
	}
}

func (r *firestoreRepository) CreateWorkshop(ctx context.Context, w Workshop) error {
	_, err := r.client.Collection(docstore.CollectionWorkshops).Doc(w.ID).Create(ctx, map[string]any{
		fieldTitle:              w.Title,
		fieldDescription:        w.Description,
		fieldSkills:             w.Skills,
		fieldDifficulty:         w.Difficulty,
		docstore.FieldCreatedBy: w.CreatedBy,
		docstore.FieldCreatedAt: w.CreatedAt,
	})
	return createError(err)
}

func (r *firestoreRepository) GetWorkshop(ctx context.Context, id string) (Workshop, error) {
	doc, err := r.client.Collection(docstore.CollectionWorkshops).Doc(id).Get(ctx)
	if docstore.IsNotFound(err) {
		return Workshop{}, ErrNotFound
	}
	if err != nil {
		return Workshop{}, err
	}
	return workshopFromData(id, doc.Data()), nil
}

func (r *firestoreRepository) ListWorkshops(ctx context.Context, createdBy string) ([]Workshop, error) {
	q := r.client.Collection(docstore.CollectionWorkshops).Query
	if createdBy != "" {
		q = q.Where(docstore.FieldCreatedBy, "==", createdBy)
	}

	workshops := []Workshop{}
	err := each(q.Documents(ctx), func(doc *firestore.DocumentSnapshot) {
		workshops = append(workshops, workshopFromData(doc.Ref.ID, doc.Data()))
	})
	if err != nil {
		return nil, err
	}
	// Sorted here rather than with OrderBy so the createdBy filter needs no composite index.
	sort.SliceStable(workshops, func(i, j int) bool {
		return workshops[i].CreatedAt.After(workshops[j].CreatedAt)
	})
	return workshops, nil
}

func workshopFromData(id string, data map[string]any) Workshop {
	skills := docstore.Strings(data[fieldSkills])
	if skills == nil {
		skills = []string{}
	}
	return Workshop{
		ID:          id,
		Title:       docstore.String(data[fieldTitle]),
		Description: docstore.String(data[fieldDescription]),
		Skills:      skills,
		Difficulty:  docstore.String(data[fieldDifficulty]),
		CreatedBy:   docstore.String(data[docstore.FieldCreatedBy]),
		CreatedAt:   docstore.Time(data[docstore.FieldCreatedAt]),
	}
}

func (r *firestoreRepository) CreateLesson(ctx context.Context, l Lesson) error {
	_, err := r.client.Collection(docstore.CollectionLessons).Doc(l.ID).Create(ctx, map[string]any{
		docstore.FieldWorkshopID: l.WorkshopID,
		fieldTitle:               l.Title,
		fieldContent:             l.Content,
		docstore.FieldCreatedAt:  l.CreatedAt,
	})
	return createError(err)
}

func (r *firestoreRepository) GetLesson(ctx context.Context, id string) (Lesson, error) {
	doc, err := r.client.Collection(docstore.CollectionLessons).Doc(id).Get(ctx)
	if docstore.IsNotFound(err) {
		return Lesson{}, ErrNotFound
	}
	if err != nil {
		return Lesson{}, err
	}
	return lessonFromData(id, doc.Data()), nil
}

func (r *firestoreRepository) ListLessons(ctx context.Context, workshopID string) ([]Lesson, error) {
	q := r.client.Collection(docstore.CollectionLessons).Where(docstore.FieldWorkshopID, "==", workshopID)

	lessons := []Lesson{}
	err := each(q.Documents(ctx), func(doc *firestore.DocumentSnapshot) {
		lessons = append(lessons, lessonFromData(doc.Ref.ID, doc.Data()))
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(lessons, func(i, j int) bool {
		return lessons[i].CreatedAt.Before(lessons[j].CreatedAt)
	})
	return lessons, nil
}

func lessonFromData(id string, data map[string]any) Lesson {
	return Lesson{
		ID:         id,
		WorkshopID: docstore.String(data[docstore.FieldWorkshopID]),
		Title:      docstore.String(data[fieldTitle]),
		Content:    docstore.String(data[fieldContent]),
		CreatedAt:  docstore.Time(data[docstore.FieldCreatedAt]),
	}
}

func (r *firestoreRepository) CreateRegistration(ctx context.Context, reg Registration) error {
	_, err := r.client.Collection(docstore.CollectionRegistrations).Doc(reg.ID).Create(ctx, map[string]any{
		docstore.FieldUserID:     reg.UserID,
		docstore.FieldWorkshopID: reg.WorkshopID,
		docstore.FieldStatus:     reg.Status,
		fieldRegisteredAt:        reg.RegisteredAt,
	})
	return createError(err)
}

func (r *firestoreRepository) GetRegistration(ctx context.Context, userID, workshopID string) (Registration, error) {
	id := RegistrationID(userID, workshopID)
	doc, err := r.client.Collection(docstore.CollectionRegistrations).Doc(id).Get(ctx)
	if docstore.IsNotFound(err) {
		return Registration{}, ErrNotFound
	}
	if err != nil {
		return Registration{}, err
	}
	data := doc.Data()
	return Registration{
		ID:           id,
		UserID:       docstore.String(data[docstore.FieldUserID]),
		WorkshopID:   docstore.String(data[docstore.FieldWorkshopID]),
		Status:       docstore.String(data[docstore.FieldStatus]),
		RegisteredAt: docstore.Time(data[fieldRegisteredAt]),
	}, nil
}

func (r *firestoreRepository) DeleteRegistration(ctx context.Context, userID, workshopID string) error {
	ref := r.client.Collection(docstore.CollectionRegistrations).Doc(RegistrationID(userID, workshopID))
	_, err := ref.Delete(ctx, firestore.Exists)
	if docstore.IsNotFound(err) {
		return ErrNotFound
	}
	return err
}

func (r *firestoreRepository) CountRegistrations(ctx context.Context, workshopID string) (int, error) {
	q := r.client.Collection(docstore.CollectionRegistrations).Where(docstore.FieldWorkshopID, "==", workshopID)
	return docstore.Count(ctx, q)
}

func (r *firestoreRepository) CreateReflection(ctx context.Context, reflection Reflection) error {
	_, err := r.client.Collection(docstore.CollectionReflections).Doc(reflection.ID).Create(ctx, map[string]any{
		docstore.FieldUserID:      reflection.UserID,
		docstore.FieldLessonID:    reflection.LessonID,
		docstore.FieldWorkshopID:  reflection.WorkshopID,
		fieldContent:              reflection.Content,
		docstore.FieldStatus:      reflection.Status,
		docstore.FieldPoints:      nil,
		docstore.FieldSubmittedAt: reflection.SubmittedAt,
	})
	return createError(err)
}

func (r *firestoreRepository) GetReflection(ctx context.Context, id string) (Reflection, error) {
	doc, err := r.client.Collection(docstore.CollectionReflections).Doc(id).Get(ctx)
	if docstore.IsNotFound(err) {
		return Reflection{}, ErrNotFound
	}
	if err != nil {
		return Reflection{}, err
	}
	return reflectionFromData(id, doc.Data()), nil
}

// FindReflection queries by owner and lesson so reflections written under generated ids are found too.
func (r *firestoreRepository) FindReflection(ctx context.Context, userID, lessonID string) (Reflection, error) {
	iter := r.client.Collection(docstore.CollectionReflections).
		Where(docstore.FieldUserID, "==", userID).
		Where(docstore.FieldLessonID, "==", lessonID).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return Reflection{}, ErrNotFound
	}
	if err != nil {
		return Reflection{}, err
	}
	return reflectionFromData(doc.Ref.ID, doc.Data()), nil
}

func (r *firestoreRepository) ListLessonReflections(ctx context.Context, lessonID string) ([]Reflection, error) {
	q := r.client.Collection(docstore.CollectionReflections).Where(docstore.FieldLessonID, "==", lessonID)
	return r.reflections(ctx, q)
}

func (r *firestoreRepository) ListPendingReflections(ctx context.Context) ([]Reflection, error) {
	q := r.client.Collection(docstore.CollectionReflections).Where(docstore.FieldStatus, "==", StatusPending)
	reflections, err := r.reflections(ctx, q)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(reflections, func(i, j int) bool {
		return reflections[i].SubmittedAt.Before(reflections[j].SubmittedAt)
	})
	return reflections, nil
}

func (r *firestoreRepository) reflections(ctx context.Context, q firestore.Query) ([]Reflection, error) {
	reflections := []Reflection{}
	err := each(q.Documents(ctx), func(doc *firestore.DocumentSnapshot) {
		reflections = append(reflections, reflectionFromData(doc.Ref.ID, doc.Data()))
	})
	if err != nil {
		return nil, err
	}
	return reflections, nil
}

func (r *firestoreRepository) ApplyReview(ctx context.Context, reflectionID string, review Review) (Reflection, error) {
	ref := r.client.Collection(docstore.CollectionReflections).Doc(reflectionID)

	var reviewed Reflection
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if docstore.IsNotFound(err) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		current := reflectionFromData(reflectionID, doc.Data())
		if current.Status != StatusPending {
			return ErrAlreadyReviewed
		}

		if err := tx.Update(ref, []firestore.Update{
			{Path: docstore.FieldStatus, Value: review.Status},
			{Path: docstore.FieldPoints, Value: review.Points},
			{Path: docstore.FieldReviewedAt, Value: review.ReviewedAt},
			{Path: docstore.FieldReviewedBy, Value: review.ReviewedBy},
		}); err != nil {
			return err
		}
		reviewed = current.withReview(review)
		return nil
	})
	if err != nil {
		return Reflection{}, err
	}
	return reviewed, nil
}

// reflectionFromData decodes field by field so one malformed value does not drop the document.
func reflectionFromData(id string, data map[string]any) Reflection {
	reflection := Reflection{
		ID:          id,
		UserID:      docstore.String(data[docstore.FieldUserID]),
		LessonID:    docstore.String(data[docstore.FieldLessonID]),
		WorkshopID:  docstore.String(data[docstore.FieldWorkshopID]),
		Content:     docstore.String(data[fieldContent]),
		Status:      docstore.String(data[docstore.FieldStatus]),
		Points:      docstore.IntPtr(data[docstore.FieldPoints]),
		SubmittedAt: docstore.Time(data[docstore.FieldSubmittedAt]),
		ReviewedBy:  docstore.String(data[docstore.FieldReviewedBy]),
	}
	if reviewedAt := docstore.Time(data[docstore.FieldReviewedAt]); !reviewedAt.IsZero() {
		reflection.ReviewedAt = &reviewedAt
	}
	return reflection
}

func each(iter *firestore.DocumentIterator, fn func(doc *firestore.DocumentSnapshot)) error {
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return err
		}
		fn(doc)
	}
}

func createError(err error) error {
	if docstore.IsAlreadyExists(err) {
		return ErrConflict
	}
	return err
}
