// Package control feeds remote parameter, MIDI and transport commands from
// NATS subjects into a render queue.
//
// Messages are JSON on three subjects under a common prefix:
//
//	<prefix>.param      {"param": "dryWetMix", "value": 0.8, "ramp_ms": 50}
//	<prefix>.midi       {"midi": [176, 1, 64], "delay_ms": 10}
//	<prefix>.transport  {"command": "stop"}
//
// Each message is stamped with the sink's sample clock plus its delay
// and posted as a render.Event. Nothing here runs on the render
// goroutine except CCMapper, which turns control changes into parameter
// writes.
package control
