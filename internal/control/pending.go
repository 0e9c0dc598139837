package control

import (
	"container/heap"

	"github.com/cwbudde/algo-render/dsp/render"
)

type held struct {
	event   render.Event
	subject string
	seq     uint64
}

// pendingEvents orders held events by time, then by arrival.
type pendingEvents []held

func (p pendingEvents) Len() int { return len(p) }

func (p pendingEvents) Less(i, j int) bool {
	if p[i].event.Time != p[j].event.Time {
		return p[i].event.Time < p[j].event.Time
	}
	return p[i].seq < p[j].seq
}

func (p pendingEvents) Swap(i, j int) { p[i], p[j] = p[j], p[i] }

func (p *pendingEvents) Push(x any) { *p = append(*p, x.(held)) }

func (p *pendingEvents) Pop() any {
	old := *p
	n := len(old)
	h := old[n-1]
	*p = old[:n-1]
	return h
}

func (p pendingEvents) peek() (held, bool) {
	if len(p) == 0 {
		return held{}, false
	}
	return p[0], true
}

func (p *pendingEvents) push(h held) { heap.Push(p, h) }

func (p *pendingEvents) pop() held { return heap.Pop(p).(held) }
