package tntp

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/yuzhenfeng2002/Traffic-Assignment-2024/assign"
	"github.com/yuzhenfeng2002/Traffic-Assignment-2024/network"
)

// WriteFlows emits the solved link flows in the collection's *_flow.tntp
// layout: a short header (total system travel time, cost model, objective)
// followed by one tab-separated record per link. Travel times are evaluated
// with the given model at the given flows.
func WriteFlows(w io.Writer, nw *network.Network, m network.CostModel, obj assign.Objective, flows []float64) error {
	times, err := nw.TravelTimes(m, flows)
	if err != nil {
		return err
	}
	var tstt float64
	for i, f := range flows {
		tstt += f * times[i]
	}

	if _, err := fmt.Fprintf(w, "Total Travel Time:\t%.9f\n", tstt); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "Cost function used:\t%s\n", m.Name()); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "User equilibrium (UE) or system optimal (SO):\t%s\n\n", obj); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, "init_node\tterm_node\tflow\ttravelTime"); err != nil {
		return err
	}
	for i := 0; i < nw.NumLinks(); i++ {
		l := nw.Link(i)
		if _, err := fmt.Fprintf(w, "%d\t%d\t%.9f\t%.9f\n", l.From, l.To, flows[i], times[i]); err != nil {
			return err
		}
	}

	return nil
}

// WriteGaps emits the per-iteration convergence trace as CSV with columns
// (elapsed seconds, relative gap), the input expected by the plotting
// collaborator.
func WriteGaps(w io.Writer, trace []assign.TracePoint) error {
	cw := csv.NewWriter(w)
	for _, tp := range trace {
		rec := []string{
			strconv.FormatFloat(tp.Elapsed.Seconds(), 'f', 9, 64),
			strconv.FormatFloat(tp.Gap, 'f', 9, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()

	return cw.Error()
}
