// Package gateway is the console's only route to the warehouse: it turns
// procedure calls into SQL text, executes them over the open session and
// unwraps the single-row, single-column JSON reply convention every
// procedure follows. It performs no business validation, no caching and no
// retries; any failure is folded into the same envelope shape the
// procedures themselves return.
package gateway

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/karthikeyanvijay/snowflake-cortex-document-validation-app/warehouse"
)

// Envelope is the JSON object every procedure replies with. Transport
// failures and empty result sets are normalized into the same shape so
// callers have exactly one thing to check.
type Envelope map[string]any

func (e Envelope) Success() bool {
	ok, _ := e["success"].(bool)
	return ok
}

func (e Envelope) ErrorMessage() string {
	msg, _ := e["error"].(string)
	return msg
}

// Decode remarshals the envelope into a typed view of the payload.
func (e Envelope) Decode(v any) error {
	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, v)
}

func failure(msg string) Envelope {
	return Envelope{"success": false, "error": msg}
}

type Gateway struct {
	session warehouse.Querier
	logger  *slog.Logger
}

func New(session warehouse.Querier, logger *slog.Logger) *Gateway {
	return &Gateway{
		session: session,
		logger:  logger,
	}
}

// Call invokes a procedure and unwraps the JSON body found in the sole
// result row under the column named after the procedure. A call returning
// no rows is a failure, not a crash.
func (g *Gateway) Call(ctx context.Context, procedure string, args ...any) Envelope {
	stmt, err := BuildCall(procedure, args...)
	if err != nil {
		return failure(err.Error())
	}

	rows, err := g.session.Query(ctx, stmt)
	if err != nil {
		g.logger.Error("Procedure call failed",
			slog.String("procedure", procedure),
			slog.String("error", err.Error()))
		return failure(err.Error())
	}
	if len(rows) == 0 {
		return failure("No response")
	}

	cell, ok := rows[0][procedure]
	if !ok && len(rows[0]) == 1 {
		for _, v := range rows[0] {
			cell = v
		}
		ok = true
	}
	if !ok {
		return failure("No response")
	}

	var decoded any
	switch body := cell.(type) {
	case string:
		if err := json.Unmarshal([]byte(body), &decoded); err != nil {
			g.logger.Error("Procedure returned malformed JSON",
				slog.String("procedure", procedure),
				slog.String("error", err.Error()))
			return failure(err.Error())
		}
	default:
		decoded = cell
	}

	obj, ok := decoded.(map[string]any)
	if !ok {
		return failure("unexpected response shape from " + procedure)
	}
	return Envelope(obj)
}

// queryRows runs a statement whose reply is a plain result set rather than
// the single-cell JSON convention (config listings, file listings).
func (g *Gateway) queryRows(ctx context.Context, stmt string) ([]map[string]any, error) {
	rows, err := g.session.Query(ctx, stmt)
	if err != nil {
		g.logger.Error("Warehouse query failed",
			slog.String("statement", stmt),
			slog.String("error", err.Error()))
		return nil, err
	}
	return rows, nil
}
