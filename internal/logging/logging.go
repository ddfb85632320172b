package logging

import (
	"go.uber.org/zap"
)

// New builds the process logger: JSON output for machine consumption,
// console encoding otherwise.
func New(jsonOutput bool) (*zap.SugaredLogger, error) {
	var (
		l   *zap.Logger
		err error
	)
	if jsonOutput {
		l, err = zap.NewProduction()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, err
	}
	return l.Sugar(), nil
}
