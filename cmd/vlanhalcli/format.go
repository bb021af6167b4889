package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/veesix-networks/vlanhal/pkg/confdb"
	"github.com/veesix-networks/vlanhal/pkg/hal"
)

const (
	formatTable = "table"
	formatJSON  = "json"
)

type formatter struct {
	format string
}

func (f *formatter) printJSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func (f *formatter) printGroups(groups []hal.GroupState) error {
	if f.format == formatJSON {
		return f.printJSON(groups)
	}
	if len(groups) == 0 {
		fmt.Println("No bridge groups")
		return nil
	}

	w := newTabWriter()
	fmt.Fprintln(w, "GROUP\tSTATE\tDEFAULT VLAN\tPORTS")
	for _, g := range groups {
		state := "absent"
		if g.Present {
			state = "down"
			if g.Up {
				state = "up"
			}
		}
		var ports []string
		for _, p := range g.Ports {
			ports = append(ports, p.Name)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", g.Name, state, dash(g.DefaultVLANID), dash(strings.Join(ports, ", ")))
	}
	return w.Flush()
}

func (f *formatter) printGroup(g *hal.GroupState) error {
	if f.format == formatJSON {
		return f.printJSON(g)
	}

	state := "absent"
	if g.Present {
		state = "down"
		if g.Up {
			state = "up"
		}
	}
	fmt.Printf("Group:        %s\n", g.Name)
	fmt.Printf("State:        %s\n", state)
	fmt.Printf("Default VLAN: %s\n", dash(g.DefaultVLANID))
	if len(g.Ports) == 0 {
		fmt.Println("Ports:        -")
		return nil
	}
	fmt.Println("Ports:")
	w := newTabWriter()
	fmt.Fprintln(w, "  NAME\tPARENT\tVLAN\tTAGGED")
	for _, p := range g.Ports {
		vlan := "-"
		if p.Tagged {
			vlan = fmt.Sprintf("%d", p.VLANID)
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\t%v\n", p.Name, dash(p.Parent), vlan, p.Tagged)
	}
	return w.Flush()
}

func (f *formatter) printEntries(entries []confdb.Entry) error {
	if f.format == formatJSON {
		return f.printJSON(entries)
	}
	if len(entries) == 0 {
		fmt.Println("No config entries")
		return nil
	}
	w := newTabWriter()
	fmt.Fprintln(w, "GROUP\tVLAN")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\n", e.GroupName, e.VLANID)
	}
	return w.Flush()
}

func (f *formatter) printStats(stats *hal.Stats) error {
	if f.format == formatJSON {
		return f.printJSON(stats)
	}
	w := newTabWriter()
	fmt.Fprintln(w, "OPERATION\tATTEMPTS\tERRORS")
	for _, op := range stats.Ops {
		fmt.Fprintf(w, "%s\t%d\t%d\n", op.Op, op.Attempts, op.Errors)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if stats.LastError != "" {
		fmt.Printf("Last error: %s\n", stats.LastError)
	}
	return nil
}

func newTabWriter() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
