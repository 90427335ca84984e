package handlers

import (
	"net/http"

	"github.com/pictocat/backend/internal/database"
	"github.com/pictocat/backend/internal/middleware"
	"github.com/rs/zerolog/log"
)

type recordActivityRequest struct {
	Path      string `json:"path" validate:"required,max=200"`
	EventType string `json:"eventType" validate:"omitempty,oneof=page_view game_start game_end phrase_spoken"`
}

// RecordActivity stores a lightweight engagement event. Authentication is
// optional; anonymous events are kept without a user id.
func RecordActivity(w http.ResponseWriter, r *http.Request) {
	var req recordActivityRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.EventType == "" {
		req.EventType = "page_view"
	}

	userID := ""
	if cfg != nil {
		if id, err := middleware.IdentityFromRequest(r, cfg.JWTSecret, cfg.JWTIssuer); err == nil {
			userID = id.UserID
		}
	}

	if database.PostgresDB == nil {
		// Analytics store is optional; dropping the event beats failing the client.
		writeJSON(w, http.StatusAccepted, map[string]interface{}{"recorded": false})
		return
	}

	_, err := database.PostgresDB.ExecContext(r.Context(),
		`INSERT INTO activity_events (user_id, path, event_type) VALUES ($1, $2, $3)`,
		userID, req.Path, req.EventType)
	if err != nil {
		log.Error().Err(err).Msg("failed to record activity event")
		writeJSON(w, http.StatusAccepted, map[string]interface{}{"recorded": false})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"recorded": true})
}

type insightRow struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// GetInsights aggregates engagement metrics for the admin dashboard.
func GetInsights(w http.ResponseWriter, r *http.Request) {
	if _, err := requireAdmin(r); err != nil {
		writeError(w, err)
		return
	}
	if database.PostgresDB == nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"available": false,
		})
		return
	}
	ctx := r.Context()

	var totalEvents int
	if err := database.PostgresDB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM activity_events`).Scan(&totalEvents); err != nil {
		writeError(w, err)
		return
	}

	dailyActive := []insightRow{}
	rows, err := database.PostgresDB.QueryContext(ctx, `
		SELECT TO_CHAR(created_at::date, 'YYYY-MM-DD') AS day,
		       COUNT(DISTINCT user_id)
		FROM activity_events
		WHERE created_at >= NOW() - INTERVAL '7 days' AND user_id <> ''
		GROUP BY day
		ORDER BY day DESC`)
	if err != nil {
		writeError(w, err)
		return
	}
	defer rows.Close()
	for rows.Next() {
		var row insightRow
		if err := rows.Scan(&row.Label, &row.Count); err != nil {
			writeError(w, err)
			return
		}
		dailyActive = append(dailyActive, row)
	}
	if err := rows.Err(); err != nil {
		writeError(w, err)
		return
	}

	topPaths := []insightRow{}
	pathRows, err := database.PostgresDB.QueryContext(ctx, `
		SELECT path, COUNT(*)
		FROM activity_events
		WHERE created_at >= NOW() - INTERVAL '30 days'
		GROUP BY path
		ORDER BY COUNT(*) DESC
		LIMIT 10`)
	if err != nil {
		writeError(w, err)
		return
	}
	defer pathRows.Close()
	for pathRows.Next() {
		var row insightRow
		if err := pathRows.Scan(&row.Label, &row.Count); err != nil {
			writeError(w, err)
			return
		}
		topPaths = append(topPaths, row)
	}
	if err := pathRows.Err(); err != nil {
		writeError(w, err)
		return
	}

	var returningUsers int
	if err := database.PostgresDB.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM (
			SELECT user_id
			FROM activity_events
			WHERE user_id <> ''
			GROUP BY user_id
			HAVING COUNT(DISTINCT created_at::date) > 1
		) repeat_users`).Scan(&returningUsers); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"available":        true,
		"totalEvents":      totalEvents,
		"dailyActiveUsers": dailyActive,
		"topPaths":         topPaths,
		"returningUsers":   returningUsers,
	})
}
