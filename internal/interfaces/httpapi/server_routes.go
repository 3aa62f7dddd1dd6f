package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, adminAPIKey string) {
	admin := func(pattern string, fn http.HandlerFunc) {
		mux.Handle(pattern, RequireAdminKey(adminAPIKey, fn))
	}

	admin("GET /v1/competitions", handler.ListCompetitions)
	admin("POST /v1/competitions", handler.AddCompetition)
	admin("GET /v1/competitions/{competitionID}", handler.GetCompetition)
	admin("GET /v1/competitions/{competitionID}/seasons", handler.ListSeasons)
	admin("POST /v1/competitions/{competitionID}/seasons", handler.AddSeason)
	admin("GET /v1/competitions/{competitionID}/seasons/active", handler.GetActiveSeason)
	admin("GET /v1/competitions/{competitionID}/rounds/upcoming", handler.UpcomingRound)
	admin("GET /v1/competitions/{competitionID}/rounds/{orderNumber}/fixtures", handler.RoundFixtures)

	admin("GET /v1/seasons/{seasonID}", handler.GetSeason)
	admin("PATCH /v1/seasons/{seasonID}", handler.UpdateSeason)
	admin("POST /v1/seasons/{seasonID}/refresh", handler.RefreshSeason)
	admin("GET /v1/seasons/{seasonID}/results", handler.SeasonResults)
	admin("GET /v1/seasons/{seasonID}/rounds/{orderNumber}/results", handler.RoundResults)

	admin("POST /v1/refresh/full", handler.RefreshAllSeasons)
	admin("POST /v1/refresh/active", handler.RefreshAllActive)

	admin("GET /v1/users/{userID}", handler.GetUser)
	admin("PUT /v1/users/{userID}", handler.SaveUser)
	admin("PATCH /v1/users/{userID}", handler.UpdateUser)
	admin("DELETE /v1/users/{userID}", handler.DeactivateUser)
	admin("POST /v1/users/{userID}/competitions/{competitionID}/toggle", handler.ToggleCompetition)
	admin("POST /v1/users/{userID}/predictions", handler.SavePredictions)
	admin("GET /v1/users/{userID}/seasons/{seasonID}/rounds/{orderNumber}/predictions", handler.UserRoundPredictions)
}
