// Package options parses the flat string properties that configure the
// planner into a typed, immutable Options value.  Invalid values are
// reported as warnings and replaced by their defaults.
package options

import (
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/alecthomas/units"
	"github.com/brimdata/flowplan/compiler/dag"
	"go.uber.org/zap"
)

const (
	KeyAggregation            = "operator.aggregation.default"
	KeyEstimatorPrefix        = "operator.estimator."
	KeyBroadcastLimit         = "operator.join.broadcast.limit"
	KeyLoggingLevel           = "operator.logging.level"
	KeyRemoveEmptyMaster      = "operator.masterjoin.remove.empty.master"
	KeyRemoveEmptyTransaction = "operator.masterjoin.remove.empty.transaction"

	// Prefix is shared by every key the planner recognizes.
	Prefix = "operator."
)

const DefaultBroadcastLimit = int64(20 * units.MiB)

var keys = []string{
	KeyAggregation,
	KeyBroadcastLimit,
	KeyLoggingLevel,
	KeyRemoveEmptyMaster,
	KeyRemoveEmptyTransaction,
}

type Options struct {
	// Aggregation is the partial aggregation mode used by operators that
	// leave it at DEFAULT.
	Aggregation dag.Aggregation
	// BroadcastLimit is the largest master input, in bytes, that is
	// broadcast as a join table.  It is ignored when BroadcastDisabled.
	BroadcastLimit    int64
	BroadcastDisabled bool
	// LoggingLevel is the least severe logging operator that is kept.
	LoggingLevel           dag.Level
	RemoveEmptyMaster      bool
	RemoveEmptyTransaction bool
	// Scales holds per-type estimator overrides.  A NaN scale forces an
	// unknown estimate.
	Scales map[dag.Type]float64
}

func Default() Options {
	return Options{
		Aggregation:    dag.AggregationTotal,
		BroadcastLimit: DefaultBroadcastLimit,
		LoggingLevel:   dag.LevelInfo,
	}
}

// Parse builds Options from props.  Each invalid or unrecognized key is
// logged once as a warning and does not affect the result.
func Parse(props map[string]string, logger *zap.Logger) Options {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := Default()
	for _, key := range slices.Sorted(maps.Keys(props)) {
		value := strings.TrimSpace(props[key])
		switch {
		case key == KeyAggregation:
			agg, err := dag.ParseAggregation(value)
			if err != nil || agg == dag.AggregationDefault {
				warnValue(logger, key, value, "expected TOTAL or PARTIAL")
				continue
			}
			o.Aggregation = agg
		case key == KeyBroadcastLimit:
			limit, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				// An unusable limit never broadcasts rather than
				// broadcasting unconditionally.
				logger.Warn("invalid broadcast limit; broadcast joins are disabled",
					zap.String("key", key), zap.String("value", value))
				o.BroadcastDisabled = true
				continue
			}
			o.BroadcastLimit = limit
		case key == KeyLoggingLevel:
			level, err := dag.ParseLevel(value)
			if err != nil || value == "" {
				warnValue(logger, key, value, "expected DEBUG, INFO, WARN, or ERROR")
				continue
			}
			o.LoggingLevel = level
		case key == KeyRemoveEmptyMaster:
			o.RemoveEmptyMaster = parseBool(logger, key, value)
		case key == KeyRemoveEmptyTransaction:
			o.RemoveEmptyTransaction = parseBool(logger, key, value)
		case strings.HasPrefix(key, KeyEstimatorPrefix):
			o.parseScale(logger, key, value)
		case strings.HasPrefix(key, Prefix):
			warnUnknown(logger, key, keys)
		}
	}
	return o
}

func (o *Options) parseScale(logger *zap.Logger, key, value string) {
	name := strings.TrimPrefix(key, KeyEstimatorPrefix)
	typ, err := dag.ParseType(name)
	if err != nil || typ == dag.None {
		var known []string
		for _, t := range dag.Types() {
			known = append(known, KeyEstimatorPrefix+t.String())
		}
		warnUnknown(logger, key, known)
		return
	}
	scale, err := strconv.ParseFloat(value, 64)
	if err != nil || (scale < 0 && !math.IsNaN(scale)) || math.IsInf(scale, 0) {
		warnValue(logger, key, value, "expected a non-negative scale or NaN")
		return
	}
	if o.Scales == nil {
		o.Scales = make(map[dag.Type]float64)
	}
	o.Scales[typ] = scale
}

// Scale returns the estimator override for typ, if any.
func (o Options) Scale(typ dag.Type) (float64, bool) {
	scale, ok := o.Scales[typ]
	return scale, ok
}

// CanBroadcast reports whether a master input of the given estimated size
// may be broadcast.  Unknown (NaN) sizes are never broadcast.
func (o Options) CanBroadcast(size float64) bool {
	if o.BroadcastDisabled || math.IsNaN(size) {
		return false
	}
	return size <= float64(o.BroadcastLimit)
}

// PartialAggregation resolves the effective mode of an operator annotation.
func (o Options) PartialAggregation(declared dag.Aggregation) bool {
	if declared == dag.AggregationDefault {
		declared = o.Aggregation
	}
	return declared == dag.AggregationPartial
}

func parseBool(logger *zap.Logger, key, value string) bool {
	b, err := strconv.ParseBool(value)
	if err != nil {
		warnValue(logger, key, value, "expected true or false")
		return false
	}
	return b
}

func warnValue(logger *zap.Logger, key, value, hint string) {
	logger.Warn("invalid option value; using default",
		zap.String("key", key), zap.String("value", value), zap.String("hint", hint))
}

func warnUnknown(logger *zap.Logger, key string, candidates []string) {
	fields := []zap.Field{zap.String("key", key)}
	if s := suggest(key, candidates); s != "" {
		fields = append(fields, zap.String("suggestion", s))
	}
	logger.Warn("unrecognized option", fields...)
}

// suggest returns the candidate closest to key when it is close enough to
// be a likely misspelling.
func suggest(key string, candidates []string) string {
	best, bestDist := "", len(key)/3+1
	for _, c := range candidates {
		if d := levenshtein.ComputeDistance(key, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}
