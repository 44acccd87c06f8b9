package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vky3831/thryv/internal/auth"
	"github.com/vky3831/thryv/internal/config"
	"github.com/vky3831/thryv/internal/models"
	"github.com/vky3831/thryv/internal/repository"
	"github.com/vky3831/thryv/internal/snapshot"
	"github.com/vky3831/thryv/internal/storage"
	"github.com/vky3831/thryv/internal/storage/sqlite"
)

// ErrNoCurrentProfile is returned when a command needs a profile and
// neither --profile nor a prior login selected one.
var ErrNoCurrentProfile = errors.New("no profile selected, log in or pass --profile")

// ErrNotLoggedIn is returned when a passkey-protected profile is used
// without a valid session.
var ErrNotLoggedIn = errors.New("profile is passkey protected, log in first")

// app bundles the open store with the repositories the commands use. Each
// command invocation opens one and closes it when done.
type app struct {
	cfg        *config.Config
	store      storage.Store
	profiles   *repository.Profiles
	items      *repository.Items
	history    *repository.History
	meta       *repository.Meta
	serializer *snapshot.Serializer
}

func openApp(opts *RootOptions) (*app, error) {
	store, err := sqlite.Open(opts.cfg.Database.Path, repository.Schema())
	if err != nil {
		return nil, err
	}
	return &app{
		cfg:        opts.cfg,
		store:      store,
		profiles:   repository.NewProfiles(store),
		items:      repository.NewItems(store),
		history:    repository.NewHistory(store),
		meta:       repository.NewMeta(store),
		serializer: snapshot.NewSerializer(store),
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}

// sessions builds the session manager, preferring the configured secret and
// falling back to a device-local one generated on first use.
func (a *app) sessions(ctx context.Context) (*auth.SessionManager, error) {
	secret := a.cfg.Auth.SessionSecret
	if secret == "" {
		stored, ok, err := a.meta.Get(ctx, models.MetaSessionSecret)
		if err != nil {
			return nil, err
		}
		if ok {
			secret = stored
		} else {
			secret = uuid.NewString()
			if err := a.meta.Set(ctx, models.MetaSessionSecret, secret); err != nil {
				return nil, err
			}
		}
	}
	ttl := a.cfg.Auth.SessionTTL
	if ttl <= 0 {
		ttl = config.DefaultSessionTTL
	}
	return auth.NewSessionManager(secret, ttl), nil
}

// requireProfile resolves the profile a command acts on: the --profile flag
// when given, otherwise the current profile set at login. Passkey-protected
// profiles additionally need a valid session for their ID.
func (a *app) requireProfile(ctx context.Context, flagValue string) (*models.Profile, error) {
	id := flagValue
	if id == "" {
		current, ok, err := a.meta.Get(ctx, models.MetaCurrentProfile)
		if err != nil {
			return nil, err
		}
		if !ok || current == "" {
			return nil, ErrNoCurrentProfile
		}
		id = current
	}

	profile, err := a.profiles.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if profile.PasskeyHash == "" {
		return profile, nil
	}

	token, ok, err := a.meta.Get(ctx, models.MetaSession)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotLoggedIn
	}
	manager, err := a.sessions(ctx)
	if err != nil {
		return nil, err
	}
	sessionProfile, err := manager.Verify(token)
	if err != nil || sessionProfile != profile.ID {
		return nil, ErrNotLoggedIn
	}
	return profile, nil
}

// login verifies the passkey, stores a session token and makes the profile
// current.
func (a *app) login(ctx context.Context, id, passkey string) (*models.Profile, error) {
	profile, err := a.profiles.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if profile.PasskeyHash != "" {
		ok, err := a.profiles.Verify(ctx, id, passkey)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, auth.ErrIncorrectPasskey
		}
		manager, err := a.sessions(ctx)
		if err != nil {
			return nil, err
		}
		token, err := manager.Issue(profile.ID)
		if err != nil {
			return nil, err
		}
		if err := a.meta.Set(ctx, models.MetaSession, token); err != nil {
			return nil, err
		}
	}
	if err := a.meta.Set(ctx, models.MetaCurrentProfile, profile.ID); err != nil {
		return nil, err
	}
	return profile, nil
}

// logout drops the session and the current profile selection.
func (a *app) logout(ctx context.Context) error {
	if err := a.meta.Delete(ctx, models.MetaSession); err != nil {
		return err
	}
	return a.meta.Delete(ctx, models.MetaCurrentProfile)
}

// runWithApp opens the app, runs fn and closes the store, keeping the
// command bodies free of setup noise.
func runWithApp(opts *RootOptions, fn func(ctx context.Context, a *app) error) error {
	a, err := openApp(opts)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer a.Close()
	return fn(context.Background(), a)
}
