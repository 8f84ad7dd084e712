package user

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"golang.org/x/sync/errgroup"

	"github.com/NdumisoButhelezi/skill-up-connect-hub/shared-libs/docstore"
)

const (
	fieldDisplayName = "displayName"
	fieldBio         = "bio"
	fieldSkills      = "skills"
	fieldLocation    = "location"
	fieldLinkedIn    = "linkedIn"
	fieldUpdatedAt   = "updatedAt"
)

type firestoreRepository struct {
	client *firestore.Client
}

// NewFirestoreRepository creates a new Firestore repository
func NewFirestoreRepository(client *firestore.Client) Repository {
	return &firestoreRepository{client: client}
}

func (r *firestoreRepository) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	doc, err := r.client.Collection(docstore.CollectionUsers).Doc(userID).Get(ctx)
	if docstore.IsNotFound(err) {
		return defaultProfile(userID), nil
	}
	if err != nil {
		return nil, err
	}
	return profileFromData(userID, doc.Data()), nil
}

// profileFromData reads fields individually; older documents store createdAt as an ISO string.
func profileFromData(userID string, data map[string]any) *Profile {
	skills := docstore.Strings(data[fieldSkills])
	if skills == nil {
		skills = []string{}
	}
	return &Profile{
		UserID:      userID,
		Email:       docstore.String(data[docstore.FieldEmail]),
		Role:        docstore.String(data[docstore.FieldRole]),
		DisplayName: docstore.String(data[fieldDisplayName]),
		Bio:         docstore.String(data[fieldBio]),
		Skills:      skills,
		Location:    docstore.String(data[fieldLocation]),
		LinkedIn:    docstore.String(data[fieldLinkedIn]),
		CreatedAt:   docstore.Time(data[docstore.FieldCreatedAt]),
		UpdatedAt:   docstore.Time(data[fieldUpdatedAt]),
	}
}

func (r *firestoreRepository) UpsertProfile(ctx context.Context, userID string, updates ProfileUpdateInput) (*Profile, error) {
	data := map[string]any{}
	if updates.DisplayName != nil {
		data[fieldDisplayName] = *updates.DisplayName
	}
	if updates.Bio != nil {
		data[fieldBio] = *updates.Bio
	}
	if updates.Skills != nil {
		data[fieldSkills] = *updates.Skills
	}
	if updates.Location != nil {
		data[fieldLocation] = *updates.Location
	}
	if updates.LinkedIn != nil {
		data[fieldLinkedIn] = *updates.LinkedIn
	}
	if err := r.mergeWrite(ctx, userID, data); err != nil {
		return nil, err
	}
	return r.GetProfile(ctx, userID)
}

func (r *firestoreRepository) SetRole(ctx context.Context, userID string, selection RoleSelection) (*Profile, error) {
	data := map[string]any{docstore.FieldRole: selection.Role}
	if selection.Email != "" {
		data[docstore.FieldEmail] = selection.Email
	}
	if err := r.mergeWrite(ctx, userID, data); err != nil {
		return nil, err
	}
	return r.GetProfile(ctx, userID)
}

// mergeWrite merges data into the user document, stamping updatedAt and setting createdAt only
// when the document does not exist yet.
func (r *firestoreRepository) mergeWrite(ctx context.Context, userID string, data map[string]any) error {
	docRef := r.client.Collection(docstore.CollectionUsers).Doc(userID)
	now := time.Now().UTC()

	return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		write := make(map[string]any, len(data)+2)
		for k, v := range data {
			write[k] = v
		}
		write[fieldUpdatedAt] = now

		if _, err := tx.Get(docRef); docstore.IsNotFound(err) {
			write[docstore.FieldCreatedAt] = now
		} else if err != nil {
			return err
		}

		return tx.Set(docRef, write, firestore.MergeAll)
	})
}

func (r *firestoreRepository) GetProfileMetadata(ctx context.Context, userID string) (ProfileMetadata, error) {
	var metadata ProfileMetadata

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		n, err := docstore.Count(ctx, r.client.Collection(docstore.CollectionReflections).Where(docstore.FieldUserID, "==", userID))
		metadata.ReflectionsSubmitted = n
		return err
	})

	g.Go(func() error {
		n, err := docstore.Count(ctx, r.client.Collection(docstore.CollectionRegistrations).Where(docstore.FieldUserID, "==", userID))
		metadata.WorkshopsRegistered = n
		return err
	})

	g.Go(func() error {
		n, err := docstore.Count(ctx, r.client.Collection(docstore.CollectionWorkshops).Where(docstore.FieldCreatedBy, "==", userID))
		metadata.WorkshopsCreated = n
		return err
	})

	if err := g.Wait(); err != nil {
		return ProfileMetadata{}, err
	}
	return metadata, nil
}
