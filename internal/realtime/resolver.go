package realtime

import (
	"context"
	"strings"
)

// Profile is the user-editable profile record
type Profile struct {
	DisplayName string
}

// IdentityUser is what the identity provider reports about a user
type IdentityUser struct {
	DisplayName string
	Email       string
}

// ProfileStore reads user-set profile data
type ProfileStore interface {
	GetProfile(ctx context.Context, uid string) (*Profile, error)
}

// IdentityDirectory reads provider-reported identity data
type IdentityDirectory interface {
	GetUser(ctx context.Context, uid string) (*IdentityUser, error)
}

// Lookup is one step of the display-name fallback chain
type Lookup func(ctx context.Context, uid string) (string, error)

// DisplayNameResolver resolves a usable display name for a user id.
// Resolve never fails: each lookup's error is swallowed and the chain
// falls through to the next step, ending at a synthesized placeholder.
type DisplayNameResolver struct {
	lookups []Lookup
}

// NewDisplayNameResolver builds the standard chain: profile display name,
// provider display name, provider email local part.
func NewDisplayNameResolver(profiles ProfileStore, directory IdentityDirectory) *DisplayNameResolver {
	return &DisplayNameResolver{
		lookups: []Lookup{
			func(ctx context.Context, uid string) (string, error) {
				p, err := profiles.GetProfile(ctx, uid)
				if err != nil || p == nil {
					return "", err
				}
				return p.DisplayName, nil
			},
			func(ctx context.Context, uid string) (string, error) {
				u, err := directory.GetUser(ctx, uid)
				if err != nil || u == nil {
					return "", err
				}
				return u.DisplayName, nil
			},
			func(ctx context.Context, uid string) (string, error) {
				u, err := directory.GetUser(ctx, uid)
				if err != nil || u == nil {
					return "", err
				}
				return emailLocalPart(u.Email), nil
			},
		},
	}
}

// Resolve returns the first non-empty trimmed result, or a placeholder
func (r *DisplayNameResolver) Resolve(ctx context.Context, uid string) string {
	for _, lookup := range r.lookups {
		name, err := lookup(ctx, uid)
		if err != nil {
			continue
		}
		if name = strings.TrimSpace(name); name != "" {
			return name
		}
	}
	return placeholderName(uid)
}

func emailLocalPart(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return ""
}

// placeholderName derives a deterministic fallback from the uid
func placeholderName(uid string) string {
	short := strings.ToUpper(uid)
	if len(short) > 6 {
		short = short[:6]
	}
	if short == "" {
		short = "ANON"
	}
	return "Guest-" + short
}
