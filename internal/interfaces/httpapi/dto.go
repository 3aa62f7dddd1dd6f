package httpapi

import (
	"time"

	"github.com/riskibarqy/prediction-league/internal/domain/competition"
	"github.com/riskibarqy/prediction-league/internal/domain/prediction"
	"github.com/riskibarqy/prediction-league/internal/domain/season"
	"github.com/riskibarqy/prediction-league/internal/domain/team"
	"github.com/riskibarqy/prediction-league/internal/domain/user"
	"github.com/riskibarqy/prediction-league/internal/usecase"
)

type competitionDTO struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	ExternalID int64     `json:"external_id"`
	CreatedAt  time.Time `json:"created_at"`
}

type seasonDTO struct {
	ID            string    `json:"id"`
	CompetitionID string    `json:"competition_id"`
	Year          string    `json:"year"`
	Active        bool      `json:"active"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type roundDTO struct {
	ID           string `json:"id"`
	SeasonID     string `json:"season_id"`
	Type         string `json:"type"`
	OrderNumber  int    `json:"order_number"`
	ExternalName string `json:"external_name"`
	DisplayName  string `json:"display_name"`
}

type teamDTO struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	LogoURL string `json:"logo_url,omitempty"`
}

type fixtureDTO struct {
	ID        string     `json:"id"`
	Round     roundDTO   `json:"round"`
	HomeTeam  teamDTO    `json:"home_team"`
	AwayTeam  teamDTO    `json:"away_team"`
	Status    string     `json:"status"`
	StartTime *time.Time `json:"start_time"`
	HomeScore *int       `json:"home_score"`
	AwayScore *int       `json:"away_score"`
}

type userDTO struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	Language       string   `json:"language"`
	Timezone       string   `json:"timezone"`
	Active         bool     `json:"active"`
	CompetitionIDs []string `json:"competition_ids"`
}

type predictionDTO struct {
	ID        string    `json:"id"`
	MatchID   string    `json:"match_id"`
	HomeGoals int       `json:"home_goals"`
	AwayGoals int       `json:"away_goals"`
	DoubleUp  bool      `json:"double_up"`
	UpdatedAt time.Time `json:"updated_at"`
}

type savePredictionsDTO struct {
	Saved   []predictionDTO `json:"saved"`
	Dropped []string        `json:"dropped"`
}

type resultDTO struct {
	UserID          int64  `json:"user_id"`
	UserName        string `json:"user_name"`
	Predictions     int    `json:"predictions"`
	PredictionsLive *int   `json:"predictions_live,omitempty"`
	Guessed         int    `json:"guessed"`
	GuessedLive     *int   `json:"guessed_live,omitempty"`
	Sum             int    `json:"sum"`
	LiveSum         *int   `json:"live_sum,omitempty"`
	Total           int    `json:"total"`
}

func competitionToDTO(item competition.Competition) competitionDTO {
	return competitionDTO{
		ID:         item.ID,
		Name:       item.Name,
		ExternalID: item.ExternalID,
		CreatedAt:  item.CreatedAt,
	}
}

func seasonToDTO(item season.Season) seasonDTO {
	return seasonDTO{
		ID:            item.ID,
		CompetitionID: item.CompetitionID,
		Year:          item.Year,
		Active:        item.Active,
		UpdatedAt:     item.UpdatedAt,
	}
}

func roundToDTO(item usecase.RoundInfo) roundDTO {
	return roundDTO{
		ID:           item.Round.ID,
		SeasonID:     item.Round.SeasonID,
		Type:         string(item.Round.Type),
		OrderNumber:  item.Round.OrderNumber,
		ExternalName: item.Round.ExternalName,
		DisplayName:  item.DisplayName,
	}
}

func teamToDTO(item team.Team) teamDTO {
	return teamDTO{ID: item.ID, Name: item.Name, LogoURL: item.LogoURL}
}

func fixtureToDTO(item usecase.Fixture) fixtureDTO {
	return fixtureDTO{
		ID:        item.Match.ID,
		Round:     roundToDTO(item.Round),
		HomeTeam:  teamToDTO(item.HomeTeam),
		AwayTeam:  teamToDTO(item.AwayTeam),
		Status:    string(item.Match.Status),
		StartTime: item.Match.StartTime,
		HomeScore: item.Match.HomeScore,
		AwayScore: item.Match.AwayScore,
	}
}

func userToDTO(item user.User) userDTO {
	competitionIDs := item.CompetitionIDs
	if competitionIDs == nil {
		competitionIDs = []string{}
	}
	return userDTO{
		ID:             item.ID,
		Name:           item.Name,
		Language:       item.Language,
		Timezone:       item.Timezone,
		Active:         item.Active,
		CompetitionIDs: competitionIDs,
	}
}

func predictionsToDTO(items []prediction.Prediction) []predictionDTO {
	out := make([]predictionDTO, 0, len(items))
	for _, item := range items {
		out = append(out, predictionDTO{
			ID:        item.ID,
			MatchID:   item.MatchID,
			HomeGoals: item.HomeGoals,
			AwayGoals: item.AwayGoals,
			DoubleUp:  item.DoubleUp,
			UpdatedAt: item.UpdatedAt,
		})
	}
	return out
}

func resultsToDTO(items []usecase.UserResult) []resultDTO {
	out := make([]resultDTO, 0, len(items))
	for _, item := range items {
		out = append(out, resultDTO{
			UserID:          item.UserID,
			UserName:        item.UserName,
			Predictions:     item.Predictions,
			PredictionsLive: item.PredictionsLive,
			Guessed:         item.Guessed,
			GuessedLive:     item.GuessedLive,
			Sum:             item.Sum,
			LiveSum:         item.LiveSum,
			Total:           item.Total(),
		})
	}
	return out
}
