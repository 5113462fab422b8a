// internal/report/policy.go
package report

import (
	"fmt"
	"time"

	"oss-tldr/internal/timeframe"
)

// DefaultTTL is the uniform freshness threshold.
const DefaultTTL = time.Hour

// FreshnessPolicy decides how long a cached section stays usable.
type FreshnessPolicy interface {
	Threshold(tf timeframe.Timeframe) time.Duration
}

// UniformPolicy applies one threshold to every section and timeframe.
type UniformPolicy time.Duration

func (p UniformPolicy) Threshold(timeframe.Timeframe) time.Duration {
	return time.Duration(p)
}

// TieredPolicy scales the threshold with the length of the timeframe.
type TieredPolicy map[timeframe.Timeframe]time.Duration

// DefaultTieredPolicy returns the 1h/6h/1d/7d table.
func DefaultTieredPolicy() TieredPolicy {
	return TieredPolicy{
		timeframe.LastDay:   time.Hour,
		timeframe.LastWeek:  6 * time.Hour,
		timeframe.LastMonth: 24 * time.Hour,
		timeframe.LastYear:  7 * 24 * time.Hour,
	}
}

func (p TieredPolicy) Threshold(tf timeframe.Timeframe) time.Duration {
	if d, ok := p[tf]; ok {
		return d
	}
	return DefaultTTL
}

// NewPolicy builds a policy from its configured name.
func NewPolicy(name string, ttl time.Duration) (FreshnessPolicy, error) {
	switch name {
	case "", "uniform":
		if ttl <= 0 {
			ttl = DefaultTTL
		}
		return UniformPolicy(ttl), nil
	case "tiered":
		return DefaultTieredPolicy(), nil
	default:
		return nil, fmt.Errorf("unknown cache policy %q, expected uniform or tiered", name)
	}
}
