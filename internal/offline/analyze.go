package offline

import (
	"fmt"

	"github.com/cwbudde/algo-render/measure/lagtrack"
)

// DelayReport is the tracked delay between a render's input and output.
type DelayReport struct {
	Channel   int
	Estimates []lagtrack.Estimate
	Summary   lagtrack.Summary
}

// AnalyzeDelay tracks the delay of out against in on every channel
// both have. cfg.SampleRate defaults to in's rate.
func AnalyzeDelay(in, out *Audio, cfg lagtrack.Config) ([]DelayReport, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = float64(in.SampleRate)
	}

	tracker, err := lagtrack.NewTracker(cfg)
	if err != nil {
		return nil, fmt.Errorf("delay analysis: %w", err)
	}

	channels := min(in.NumChannels(), out.NumChannels())
	reports := make([]DelayReport, 0, channels)
	for ch := range channels {
		est, err := tracker.Track(in.Channels[ch], out.Channels[ch])
		if err != nil {
			return nil, fmt.Errorf("delay analysis channel %d: %w", ch, err)
		}
		reports = append(reports, DelayReport{
			Channel:   ch,
			Estimates: est,
			Summary:   lagtrack.Summarize(est),
		})
	}
	return reports, nil
}
