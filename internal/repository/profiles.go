package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/vky3831/thryv/internal/auth"
	"github.com/vky3831/thryv/internal/models"
	"github.com/vky3831/thryv/internal/storage"
)

// ErrNameRequired is returned when a profile is created or renamed with an
// empty name.
var ErrNameRequired = errors.New("profile name required")

// Profiles is the repository for Profile entities.
type Profiles struct {
	store storage.Store
}

// NewProfiles creates a profile repository on the given store.
func NewProfiles(store storage.Store) *Profiles {
	return &Profiles{store: store}
}

// Create adds a new profile. The passkey is hashed before storage; pass an
// empty passkey for apps that do not gate the profile. Default measurement
// types and units are seeded so a fresh profile is usable immediately.
func (r *Profiles) Create(ctx context.Context, name, passkey, dob string) (*models.Profile, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrNameRequired
	}

	profile := &models.Profile{
		Name:        name,
		DOB:         dob,
		CustomTypes: slices.Clone(models.DefaultCustomTypes),
		CustomUnits: slices.Clone(models.DefaultCustomUnits),
		CreatedAt:   time.Now().UTC(),
	}

	if passkey != "" {
		if err := auth.ValidatePasskey(passkey); err != nil {
			return nil, err
		}
		hash, err := auth.HashPasskey(passkey)
		if err != nil {
			return nil, err
		}
		profile.PasskeyHash = hash
	}

	rec, err := storage.EncodeRecord(profile)
	if err != nil {
		return nil, err
	}
	key, err := r.store.Add(ctx, CollectionProfiles, rec)
	if err != nil {
		return nil, fmt.Errorf("creating profile: %w", err)
	}
	profile.ID = key.(string)
	return profile, nil
}

// Get retrieves a profile by ID. Returns storage.ErrNotFound if absent.
func (r *Profiles) Get(ctx context.Context, id string) (*models.Profile, error) {
	rec, err := r.store.Get(ctx, CollectionProfiles, id)
	if err != nil {
		return nil, fmt.Errorf("getting profile: %w", err)
	}
	if rec == nil {
		return nil, fmt.Errorf("profile %s: %w", id, storage.ErrNotFound)
	}
	var profile models.Profile
	if err := storage.DecodeRecord(rec, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// List retrieves every profile.
func (r *Profiles) List(ctx context.Context) ([]models.Profile, error) {
	recs, err := r.store.GetAll(ctx, CollectionProfiles)
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	profiles := make([]models.Profile, 0, len(recs))
	for _, rec := range recs {
		var p models.Profile
		if err := storage.DecodeRecord(rec, &p); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// Rename changes a profile's display name.
func (r *Profiles) Rename(ctx context.Context, id, newName string) (*models.Profile, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, ErrNameRequired
	}
	return r.mutate(ctx, id, func(p *models.Profile) {
		p.Name = newName
	})
}

// AddCustomType appends a measurement type to the profile, ignoring
// duplicates.
func (r *Profiles) AddCustomType(ctx context.Context, id, customType string) (*models.Profile, error) {
	return r.mutate(ctx, id, func(p *models.Profile) {
		if !slices.Contains(p.CustomTypes, customType) {
			p.CustomTypes = append(p.CustomTypes, customType)
		}
	})
}

// AddCustomUnit appends a measurement unit to the profile, ignoring
// duplicates.
func (r *Profiles) AddCustomUnit(ctx context.Context, id, customUnit string) (*models.Profile, error) {
	return r.mutate(ctx, id, func(p *models.Profile) {
		if !slices.Contains(p.CustomUnits, customUnit) {
			p.CustomUnits = append(p.CustomUnits, customUnit)
		}
	})
}

func (r *Profiles) mutate(ctx context.Context, id string, apply func(*models.Profile)) (*models.Profile, error) {
	profile, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(profile)
	rec, err := storage.EncodeRecord(profile)
	if err != nil {
		return nil, err
	}
	if _, err := r.store.Put(ctx, CollectionProfiles, rec); err != nil {
		return nil, fmt.Errorf("updating profile: %w", err)
	}
	return profile, nil
}

// Delete removes a profile together with every item and history entry it
// owns, in one transaction. Dependents go first so a failure partway never
// leaves a child pointing at a vanished profile.
func (r *Profiles) Delete(ctx context.Context, id string) error {
	return r.store.Update(ctx, func(tx storage.Tx) error {
		for _, collection := range []string{CollectionHistory, CollectionItems} {
			recs, err := tx.GetAllByIndex(ctx, collection, IndexProfileID, id)
			if err != nil {
				return err
			}
			for _, rec := range recs {
				if err := tx.Delete(ctx, collection, rec["id"]); err != nil {
					return err
				}
			}
		}
		return tx.Delete(ctx, CollectionProfiles, id)
	})
}

// Verify compares the supplied passkey against the profile's stored
// credential. It fails closed: a missing profile or a mismatch both return
// false without error; only storage failures surface as errors. Nothing is
// mutated.
func (r *Profiles) Verify(ctx context.Context, id, passkey string) (bool, error) {
	rec, err := r.store.Get(ctx, CollectionProfiles, id)
	if err != nil {
		return false, fmt.Errorf("verifying profile: %w", err)
	}
	if rec == nil {
		return false, nil
	}
	var profile models.Profile
	if err := storage.DecodeRecord(rec, &profile); err != nil {
		return false, err
	}
	return auth.VerifyPasskey(profile.PasskeyHash, passkey), nil
}
