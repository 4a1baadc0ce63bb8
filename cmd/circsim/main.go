// circsim is a thin CLI demonstration of the Analysis Facade: it reads a
// netlist file and runs the analysis selected by flags, printing results
// in the teacher's column-aligned style (see
// _examples/edp1096-toy-spice/cmd/main.go's printResults). The engine
// itself is a library; no control-card syntax lives in the netlist (§6.2).
package main

import (
	"flag"
	"fmt"
	"log"
	"math"
	"math/cmplx"
	"os"
	"strings"

	"github.com/arclamp/circsim/pkg/circuit"
	"github.com/arclamp/circsim/pkg/util"
)

func main() {
	netlistPath := flag.String("netlist", "", "path to the netlist file")
	mode := flag.String("mode", "dc", "analysis to run: dc, tran, ac")
	probesFlag := flag.String("probes", "", "comma-separated probe names (node or comp.suffix)")
	tBegin := flag.Float64("t0", 0, "tran: start time (s)")
	tEnd := flag.Float64("t1", 1e-3, "tran: end time (s)")
	timeStep := flag.Float64("step", 0, "tran: time step (s); 0 picks (t1-t0)/1000")
	fStart := flag.Float64("f0", 1, "ac: start frequency (Hz)")
	fStop := flag.Float64("f1", 1e6, "ac: stop frequency (Hz)")
	pointsPerDecade := flag.Int("ppd", circuit.DefaultPointsPerDecade, "ac: points per decade")
	flag.Parse()

	if *netlistPath == "" {
		log.Fatal("usage: circsim -netlist <file> [-mode dc|tran|ac] [-probes a,b,c]")
	}

	content, err := os.ReadFile(*netlistPath)
	if err != nil {
		log.Fatalf("error reading netlist file: %v", err)
	}

	ckt, err := circuit.BuildFromString(string(content))
	if err != nil {
		log.Fatalf("error building circuit: %v", err)
	}

	var probes []string
	if *probesFlag != "" {
		probes = strings.Split(*probesFlag, ",")
	}

	switch *mode {
	case "dc":
		if err := ckt.DCAnalysis(); err != nil {
			log.Fatalf("dc analysis failed: %v", err)
		}
		ckt.PrintAllVariables()

	case "tran":
		if len(probes) == 0 {
			log.Fatal("tran mode requires -probes")
		}
		timestamps, series, err := ckt.TransientSimulation(*tBegin, *tEnd, probes, *timeStep)
		if err != nil {
			log.Fatalf("transient simulation failed: %v", err)
		}
		printTimeSeries(probes, timestamps, series)

	case "ac":
		if len(probes) == 0 {
			log.Fatal("ac mode requires -probes")
		}
		freqs, series, err := ckt.ACSweep(probes, *fStart, *fStop, *pointsPerDecade)
		if err != nil {
			log.Fatalf("ac sweep failed: %v", err)
		}
		printACSeries(probes, freqs, series)

	default:
		log.Fatalf("unknown -mode %q", *mode)
	}
}

func printTimeSeries(probes []string, timestamps []float64, series [][]float64) {
	fmt.Println("Time        " + strings.Join(probes, "        "))
	fmt.Println("------------------------------------------------")
	for i, t := range timestamps {
		fmt.Printf("%9s  ", util.FormatValueFactor(t, "s"))
		for _, v := range series[i] {
			fmt.Printf("%s  ", util.FormatValueFactor(v, ""))
		}
		fmt.Println()
	}
}

func printACSeries(probes []string, freqs []float64, series [][]complex128) {
	fmt.Println("Frequency      " + strings.Join(probes, "        "))
	fmt.Println("-----------------------------------------------------------------------------")
	for i, f := range freqs {
		fmt.Printf("%-13s", util.FormatFrequency(f))
		for _, v := range series[i] {
			mag := util.FormatMagnitude(abs(v))
			phase := util.FormatPhase(angleDeg(v))
			fmt.Printf("%s<%sdeg  ", mag, phase)
		}
		fmt.Println()
	}
}

func abs(c complex128) float64 { return cmplx.Abs(c) }

func angleDeg(c complex128) float64 { return cmplx.Phase(c) * 180 / math.Pi }
