package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/prediction-league/internal/domain/competition"
	"github.com/riskibarqy/prediction-league/internal/domain/user"
	"github.com/riskibarqy/prediction-league/internal/infrastructure/repository/memory"
	"github.com/stretchr/testify/require"
)

func newTestUserService() *UserService {
	competitions := memory.NewCompetitionRepository(competition.Competition{ID: "c1", Name: "Premier League", ExternalID: 39})
	return NewUserService(memory.NewUserRepository(), competitions, clockwork.NewFakeClockAt(predictionNow), nil)
}

func TestUserService_SaveUserDefaultsAndNormalizes(t *testing.T) {
	t.Parallel()

	svc := newTestUserService()
	ctx := context.Background()

	created, err := svc.SaveUser(ctx, SaveUserInput{ID: 7, Name: "x", Language: "DE"})
	require.NoError(t, err)
	if created.Timezone != user.DefaultTimezone || created.Language != user.DefaultLanguage || !created.Active {
		t.Fatalf("unexpected defaults: %+v", created)
	}
	if !strings.HasPrefix(created.Name, "x-") || len(created.Name) != len("x-")+5 {
		t.Fatalf("short name must get a random suffix: got=%q", created.Name)
	}

	require.NoError(t, svc.Deactivate(ctx, 7))
	again, err := svc.SaveUser(ctx, SaveUserInput{ID: 7, Name: "other"})
	require.NoError(t, err)
	if !again.Active || again.Name != created.Name {
		t.Fatalf("re-registration must reactivate and keep the name: got=%+v", again)
	}

	_, err = svc.SaveUser(ctx, SaveUserInput{ID: 0})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("unexpected error: got=%v want=%v", err, ErrInvalidInput)
	}
}

func TestUserService_Updates(t *testing.T) {
	t.Parallel()

	svc := newTestUserService()
	ctx := context.Background()
	_, err := svc.SaveUser(ctx, SaveUserInput{ID: 1, Name: "player one", Language: "en"})
	require.NoError(t, err)

	tests := []struct {
		name    string
		run     func() error
		wantErr error
	}{
		{
			name:    "short username",
			run:     func() error { _, err := svc.UpdateUsername(ctx, 1, "ab"); return err },
			wantErr: ErrInvalidInput,
		},
		{
			name: "valid username",
			run:  func() error { _, err := svc.UpdateUsername(ctx, 1, "striker"); return err },
		},
		{
			name:    "unknown timezone",
			run:     func() error { _, err := svc.UpdateTimezone(ctx, 1, "Mars/Olympus"); return err },
			wantErr: ErrInvalidInput,
		},
		{
			name: "utc timezone",
			run:  func() error { _, err := svc.UpdateTimezone(ctx, 1, "UTC"); return err },
		},
		{
			name:    "unsupported language",
			run:     func() error { _, err := svc.UpdateLanguage(ctx, 1, "xx"); return err },
			wantErr: ErrInvalidInput,
		},
		{
			name: "supported language",
			run:  func() error { _, err := svc.UpdateLanguage(ctx, 1, "RU"); return err },
		},
		{
			name:    "unknown user",
			run:     func() error { _, err := svc.UpdateLanguage(ctx, 404, "en"); return err },
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		err := tt.run()
		if tt.wantErr == nil {
			require.NoError(t, err, tt.name)
			continue
		}
		if !errors.Is(err, tt.wantErr) {
			t.Fatalf("%s: got=%v want=%v", tt.name, err, tt.wantErr)
		}
	}

	got, err := svc.GetUser(ctx, 1)
	require.NoError(t, err)
	if got.Name != "striker" || got.Language != "ru" || got.Timezone != "UTC" {
		t.Fatalf("unexpected user after updates: %+v", got)
	}
}

func TestUserService_ToggleCompetition(t *testing.T) {
	t.Parallel()

	svc := newTestUserService()
	ctx := context.Background()
	_, err := svc.SaveUser(ctx, SaveUserInput{ID: 1, Name: "player one"})
	require.NoError(t, err)

	subscribed, err := svc.ToggleCompetition(ctx, 1, "c1")
	require.NoError(t, err)
	if !subscribed {
		t.Fatalf("first toggle must subscribe")
	}
	subscribed, err = svc.ToggleCompetition(ctx, 1, "c1")
	require.NoError(t, err)
	if subscribed {
		t.Fatalf("second toggle must unsubscribe")
	}

	_, err = svc.ToggleCompetition(ctx, 1, "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("unexpected error: got=%v want=%v", err, ErrNotFound)
	}
}
