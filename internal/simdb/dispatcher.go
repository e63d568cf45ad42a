package simdb

import (
	"go.uber.org/zap"

	"github.com/roach88/herocheck/internal/queryir"
	"github.com/roach88/herocheck/internal/querysql"
)

// Dispatcher executes literal SQL against the simulation.
type Dispatcher struct {
	logger *zap.Logger
}

// NewDispatcher creates a Dispatcher. A nil logger discards output.
func NewDispatcher(logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{logger: logger}
}

// Execute recognises sql and returns the synthetic rows for it.
//
// SQL that matches no known shape yields empty rows, not an error. That
// keeps the simulation from failing a run on a statement it was never taught,
// but it can also hide a missing shape, so every such statement is logged
// at Warn.
func (d *Dispatcher) Execute(sql string, params []any) Rows {
	q, err := querysql.Recognize(sql, params)
	if err != nil {
		d.logger.Warn("unrecognized query shape, returning empty result",
			zap.String("sql", sql),
			zap.Int("params", len(params)),
		)
		return Rows{}
	}

	rows := Dispatch(q)
	d.logger.Debug("simulated query",
		zap.String("shape", queryir.Kind(q)),
		zap.Int("rows", len(rows)),
	)
	return rows
}
