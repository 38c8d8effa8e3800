// bench.go runs simulated tomography reconstructions for each entry in the
// cartesian product of a collection of tuning parameters, e.g. qubit count
// and shots per measurement setting, and outputs a CSV of reconstruction
// quality statistics for each combination, e.g. fidelity against the true
// state and Frobenius error.
package main

import (
	"fmt"
	"log"
	"math/rand"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/qubitools/tomo/tomo"
	"github.com/qubitools/tomo/tomo/operator"
	"github.com/qubitools/tomo/tomo/sampler"
)

var (
	qubits = flag.IntSlice("qubits", []int{2},
		"The system sizes to reconstruct; the true state is the n-qubit GHZ state.")
	shots = flag.IntSlice("shots", []int{500, 5000},
		"The shot budgets per measurement setting.")
	methods = flag.StringSlice("methods", []string{"sdp", "projection", "linear"},
		"The fitting strategies to benchmark.")
	trials = flag.Int("trials", 3, "The number of repetitions per combination.")
	seed   = flag.Int64("seed", 42, "The base seed for the simulated sampler.")
)

// An Experiment packages together the result of benchmarking a single
// parameterization for easy formatting.
type Experiment struct {
	Qubits   int
	Shots    int
	Method   string
	Trial    int
	Fidelity float64
	FrobErr  float64
}

func main() {
	flag.Parse()
	fmt.Println("Qubits,Shots,Method,Trial,Fidelity,FrobeniusError")
	for _, n := range *qubits {
		ps, err := tomo.BuildProjectors(n, tomo.PauliBasis())
		if err != nil {
			log.Fatalf("building projectors for %d qubits: %v", n, err)
		}
		truth, err := ghzState(n)
		if err != nil {
			log.Fatalf("building GHZ state for %d qubits: %v", n, err)
		}
		for _, s := range *shots {
			for _, method := range *methods {
				for trial := 0; trial < *trials; trial++ {
					exp, err := runOne(ps, truth, n, s, method, trial)
					if err != nil {
						log.Fatalf("running %d qubits, %d shots, %s: %v", n, s, method, err)
					}
					fmt.Println(exp.csv())
				}
			}
		}
	}
}

func runOne(ps *tomo.ProjectorSet, truth *operator.Dense, n, shots int, method string, trial int) (*Experiment, error) {
	rng := rand.New(rand.NewSource(*seed + int64(trial)))
	sim, err := sampler.NewSimulated(truth, ps, rng)
	if err != nil {
		return nil, err
	}
	counts, err := sim.CountsAll(shots)
	if err != nil {
		return nil, err
	}
	p, m, w, err := tomo.AssembleFitterData(counts, ps)
	if err != nil {
		return nil, err
	}

	var rho *operator.Dense
	switch method {
	case "sdp":
		rho, err = tomo.ConstrainedFit(p, m, w, tomo.FitOpts{Method: tomo.MethodSDP})
	case "projection":
		rho, err = tomo.ConstrainedFit(p, m, w, tomo.FitOpts{Method: tomo.MethodProjection})
	case "linear":
		rho, err = tomo.LinearInversionFit(p, m, tomo.LinearOpts{})
	default:
		return nil, fmt.Errorf("unknown method %q", method)
	}
	if err != nil {
		return nil, err
	}
	f, err := tomo.Fidelity(truth, rho)
	if err != nil {
		return nil, err
	}
	return &Experiment{
		Qubits:   n,
		Shots:    shots,
		Method:   method,
		Trial:    trial,
		Fidelity: f,
		FrobErr:  operator.Norm(rho.Sub(truth)),
	}, nil
}

// ghzState returns the density operator of the n-qubit GHZ state
// (|0…0⟩ + |1…1⟩)/√2, the Bell state for n = 2.
func ghzState(n int) (*operator.Dense, error) {
	amps := make([]complex128, 1<<n)
	amps[0] = 1
	amps[len(amps)-1] = 1
	return sampler.PureState(amps)
}

func (e *Experiment) csv() string {
	return strings.Join([]string{
		fmt.Sprintf("%d", e.Qubits),
		fmt.Sprintf("%d", e.Shots),
		e.Method,
		fmt.Sprintf("%d", e.Trial),
		fmt.Sprintf("%.6f", e.Fidelity),
		fmt.Sprintf("%.6f", e.FrobErr),
	}, ",")
}
