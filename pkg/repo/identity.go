package repo

import (
	"errors"
	"os"
	"strings"
	"time"
)

// Identity is the name and email recorded as both author and committer.
type Identity struct {
	Name  string
	Email string
}

// FallbackIdentity is used when neither the environment nor the config
// names anyone.
var FallbackIdentity = Identity{Name: "twig", Email: "twig@localhost"}

// IdentityProvider supplies the identity for new commits.
type IdentityProvider interface {
	Identity() (Identity, error)
}

// StaticIdentity always returns itself.
type StaticIdentity Identity

func (s StaticIdentity) Identity() (Identity, error) { return Identity(s), nil }

// EnvIdentity resolves the identity from, in order: TWIG_AUTHOR_NAME and
// TWIG_AUTHOR_EMAIL, then NAME and EMAIL, then the config [user] section,
// then FallbackIdentity. Each source is used only when it sets both name
// and email.
type EnvIdentity struct {
	Config    *Config
	LookupEnv func(string) (string, bool)
}

// NewEnvIdentity returns an EnvIdentity reading the process environment.
func NewEnvIdentity(cfg *Config) *EnvIdentity {
	return &EnvIdentity{Config: cfg, LookupEnv: os.LookupEnv}
}

func (e *EnvIdentity) Identity() (Identity, error) {
	lookup := e.LookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	pairs := [][2]string{
		{"TWIG_AUTHOR_NAME", "TWIG_AUTHOR_EMAIL"},
		{"NAME", "EMAIL"},
	}
	for _, p := range pairs {
		name, okName := lookup(p[0])
		email, okEmail := lookup(p[1])
		name, email = strings.TrimSpace(name), strings.TrimSpace(email)
		if okName && okEmail && name != "" && email != "" {
			return Identity{Name: name, Email: email}, nil
		}
	}
	if e.Config != nil && e.Config.User.Name != "" && e.Config.User.Email != "" {
		return Identity{Name: e.Config.User.Name, Email: e.Config.User.Email}, nil
	}
	return FallbackIdentity, nil
}

// Clock supplies the commit timestamp. An error aborts the commit.
type Clock interface {
	Now() (time.Time, error)
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() (time.Time, error)

func (f ClockFunc) Now() (time.Time, error) { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(func() (time.Time, error) { return time.Now(), nil })

// FixedClock always reports t.
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() (time.Time, error) { return t, nil })
}

var errClockBeforeEpoch = errors.New("clock reads before the Unix epoch")

func unixSeconds(c Clock) (int64, error) {
	now, err := c.Now()
	if err != nil {
		return 0, err
	}
	ts := now.Unix()
	if ts < 0 {
		return 0, errClockBeforeEpoch
	}
	return ts, nil
}
