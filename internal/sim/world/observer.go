package world

import (
	"encoding/json"

	"gridwalk.ai/internal/observerproto"
	"gridwalk.ai/internal/protocol"
	"gridwalk.ai/internal/sim/arbiter"
	simenc "gridwalk.ai/internal/sim/encoding"
)

type observerClient struct {
	id      string
	tickOut chan []byte

	outcomes  bool
	occupancy bool
}

func (w *World) handleObserverJoin(req ObserverJoinRequest) {
	if req.SessionID == "" || req.TickOut == nil {
		return
	}
	// Replace existing session id if any.
	if old := w.observers[req.SessionID]; old != nil {
		close(old.tickOut)
	}
	w.observers[req.SessionID] = &observerClient{
		id:        req.SessionID,
		tickOut:   req.TickOut,
		outcomes:  req.Outcomes,
		occupancy: req.Occupancy,
	}
}

func (w *World) handleObserverSubscribe(req ObserverSubscribeRequest) {
	c := w.observers[req.SessionID]
	if c == nil {
		return
	}
	c.outcomes = req.Outcomes
	c.occupancy = req.Occupancy
}

func (w *World) handleObserverLeave(id string) {
	c := w.observers[id]
	if c == nil {
		return
	}
	delete(w.observers, id)
	close(c.tickOut)
}

// closeObservers ends every stream when the loop exits.
func (w *World) closeObservers() {
	for id, c := range w.observers {
		delete(w.observers, id)
		close(c.tickOut)
	}
}

// stepObservers serializes at most four frame variants per tick and fans them
// out. Slow observers only ever see the latest frame.
func (w *World) stepObservers(nowTick uint64, digest string, intents []arbiter.Intent, outcomes []arbiter.Outcome, repaired bool) {
	if len(w.observers) == 0 {
		return
	}
	base := observerproto.TickMsg{
		Type:            protocol.TypeTick,
		ProtocolVersion: observerproto.Version,
		Tick:            nowTick,
		Digest:          digest,
		Agents:          w.agentStates(),
		Repaired:        repaired,
	}
	var outStates []observerproto.OutcomeState
	var occ *observerproto.Occupancy

	frames := map[[2]bool][]byte{}
	for _, c := range w.observers {
		key := [2]bool{c.outcomes, c.occupancy}
		b, ok := frames[key]
		if !ok {
			msg := base
			if c.outcomes {
				if outStates == nil {
					outStates = outcomeStates(intents, outcomes)
				}
				msg.Outcomes = outStates
			}
			if c.occupancy {
				if occ == nil {
					o := w.occupancy()
					occ = &o
				}
				msg.Occupancy = occ
			}
			var err error
			b, err = json.Marshal(msg)
			if err != nil {
				continue
			}
			frames[key] = b
		}
		sendLatest(c.tickOut, b)
	}
}

func (w *World) agentStates() []observerproto.AgentState {
	out := make([]observerproto.AgentState, 0, len(w.order))
	for _, id := range w.order {
		a := w.agents[id]
		out = append(out, observerproto.AgentState{ID: a.ID, Name: a.Name, Pos: [2]int{a.Pos.X, a.Pos.Y}})
	}
	return out
}

func (w *World) occupancy() observerproto.Occupancy {
	return observerproto.Occupancy{
		Encoding: simenc.RLE,
		Data:     simenc.EncodeRLE(w.grid.Flags()),
		Taken:    w.grid.TakenCount(),
	}
}

func outcomeStates(intents []arbiter.Intent, outcomes []arbiter.Outcome) []observerproto.OutcomeState {
	out := make([]observerproto.OutcomeState, 0, len(outcomes))
	for i, o := range outcomes {
		in := intents[i]
		out = append(out, observerproto.OutcomeState{
			AgentID: o.AgentID,
			From:    [2]int{in.From.X, in.From.Y},
			To:      [2]int{in.To.X, in.To.Y},
			Result:  o.Kind.String(),
			Code:    o.Kind.Code(),
			Pos:     [2]int{o.Pos.X, o.Pos.Y},
		})
	}
	return out
}
