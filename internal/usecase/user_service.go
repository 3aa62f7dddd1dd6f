package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/riskibarqy/prediction-league/internal/domain/competition"
	"github.com/riskibarqy/prediction-league/internal/domain/user"
	"github.com/riskibarqy/prediction-league/internal/platform/logging"
)

var supportedLanguages = map[string]struct{}{
	"en": {},
	"ru": {},
}

type UserService struct {
	users        user.Repository
	competitions competition.Repository
	clock        clockwork.Clock
	logger       *logging.Logger
}

type SaveUserInput struct {
	ID       int64
	Name     string
	Language string
}

func NewUserService(users user.Repository, competitions competition.Repository, clock clockwork.Clock, logger *logging.Logger) *UserService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = logging.Default()
	}

	return &UserService{
		users:        users,
		competitions: competitions,
		clock:        clock,
		logger:       logger.Named("user"),
	}
}

// SaveUser registers the user or reactivates and refreshes an existing one.
// The stored name, timezone and subscriptions of a known user are kept.
func (s *UserService) SaveUser(ctx context.Context, input SaveUserInput) (user.User, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.UserService.SaveUser")
	defer span.End()

	if input.ID <= 0 {
		return user.User{}, fmt.Errorf("%w: user id must be > 0", ErrInvalidInput)
	}

	now := s.clock.Now().UTC()
	existing, ok, err := s.users.GetByID(ctx, input.ID)
	if err != nil {
		return user.User{}, fmt.Errorf("get user: %w", err)
	}
	if !ok {
		existing = user.User{
			ID:             input.ID,
			Name:           user.FormatName(input.Name),
			Language:       normalizeLanguage(input.Language),
			Timezone:       user.DefaultTimezone,
			CompetitionIDs: []string{},
			CreatedAt:      now,
		}
	}
	existing.Active = true
	existing.UpdatedAt = now

	if err := s.users.Save(ctx, existing); err != nil {
		recordSpanError(span, err)
		return user.User{}, fmt.Errorf("save user: %w", err)
	}
	if !ok {
		s.logger.InfoContext(ctx, "user registered", "user_id", existing.ID)
	}
	return existing, nil
}

func (s *UserService) GetUser(ctx context.Context, userID int64) (user.User, error) {
	item, ok, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return user.User{}, fmt.Errorf("get user: %w", err)
	}
	if !ok {
		return user.User{}, fmt.Errorf("%w: user=%d", ErrNotFound, userID)
	}
	return item, nil
}

func (s *UserService) UpdateUsername(ctx context.Context, userID int64, name string) (user.User, error) {
	name = strings.TrimSpace(name)
	if !user.ValidName(name) {
		return user.User{}, fmt.Errorf("%w: name must have 3 to 20 allowed characters", ErrInvalidInput)
	}
	return s.update(ctx, userID, func(u *user.User) error {
		u.Name = name
		return nil
	})
}

// UpdateTimezone accepts IANA zone names such as Europe/Moscow.
func (s *UserService) UpdateTimezone(ctx context.Context, userID int64, timezone string) (user.User, error) {
	timezone = strings.TrimSpace(timezone)
	if timezone == "" {
		return user.User{}, fmt.Errorf("%w: timezone is required", ErrInvalidInput)
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return user.User{}, fmt.Errorf("%w: unknown timezone %q", ErrInvalidInput, timezone)
	}
	return s.update(ctx, userID, func(u *user.User) error {
		u.Timezone = timezone
		return nil
	})
}

func (s *UserService) UpdateLanguage(ctx context.Context, userID int64, language string) (user.User, error) {
	language = strings.ToLower(strings.TrimSpace(language))
	if _, ok := supportedLanguages[language]; !ok {
		return user.User{}, fmt.Errorf("%w: unsupported language %q", ErrInvalidInput, language)
	}
	return s.update(ctx, userID, func(u *user.User) error {
		u.Language = language
		return nil
	})
}

// ToggleCompetition flips the user's subscription to the competition and
// reports whether the user is subscribed afterwards.
func (s *UserService) ToggleCompetition(ctx context.Context, userID int64, competitionID string) (bool, error) {
	_, ok, err := s.competitions.GetByID(ctx, competitionID)
	if err != nil {
		return false, fmt.Errorf("get competition: %w", err)
	}
	if !ok {
		return false, fmt.Errorf("%w: competition=%s", ErrNotFound, competitionID)
	}

	var subscribed bool
	_, err = s.update(ctx, userID, func(u *user.User) error {
		subscribed = u.ToggleCompetition(competitionID)
		return nil
	})
	if err != nil {
		return false, err
	}
	return subscribed, nil
}

func (s *UserService) Deactivate(ctx context.Context, userID int64) error {
	_, err := s.update(ctx, userID, func(u *user.User) error {
		u.Active = false
		return nil
	})
	return err
}

func (s *UserService) update(ctx context.Context, userID int64, mutate func(*user.User) error) (user.User, error) {
	item, err := s.GetUser(ctx, userID)
	if err != nil {
		return user.User{}, err
	}
	if err := mutate(&item); err != nil {
		return user.User{}, err
	}
	item.UpdatedAt = s.clock.Now().UTC()
	if err := s.users.Save(ctx, item); err != nil {
		return user.User{}, fmt.Errorf("save user: %w", err)
	}
	return item, nil
}

func normalizeLanguage(language string) string {
	language = strings.ToLower(strings.TrimSpace(language))
	if _, ok := supportedLanguages[language]; ok {
		return language
	}
	return user.DefaultLanguage
}
