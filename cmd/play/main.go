package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"golang.org/x/exp/rand"

	"github.com/vireo/branchsearch/branchsearch"
	"github.com/vireo/branchsearch/games/chess"
	"github.com/vireo/branchsearch/games/tictactoe"
	"github.com/vireo/branchsearch/nneval"
)

var (
	game      = flag.String("game", "tictactoe", "tictactoe or chess")
	selector  = flag.String("selector", "uniform", "uniform, recurzipf or sequool")
	budget    = flag.Int("budget", 400, "branch_count_limit for the stopping criterion")
	seed      = flag.Uint64("seed", 1, "search RNG seed")
	recommend = flag.String("recommender", "softmax", "softmax or almostequal")
)

func buildConfig() branchsearch.Config {
	cfg := branchsearch.DefaultConfig()
	cfg.BranchCountLimit = *budget
	switch *selector {
	case "recurzipf":
		cfg.Selector = branchsearch.SelectorRecurZipfBase
	case "sequool":
		cfg.Selector = branchsearch.SelectorSequool
	default:
		cfg.Selector = branchsearch.SelectorUniform
	}
	if *recommend == "almostequal" {
		cfg.Recommender = branchsearch.RecommenderAlmostEqualLogistic
	} else {
		cfg.Recommender = branchsearch.RecommenderSoftmax
	}
	return cfg
}

func main() {
	flag.Parse()
	cfg := buildConfig()

	switch *game {
	case "chess":
		playChess(cfg)
	default:
		playTicTacToe(cfg)
	}
}

func playTicTacToe(cfg branchsearch.Config) {
	s := tictactoe.New()
	td := tictactoe.TerminalDetector{}
	ev := tictactoe.HeuristicEvaluator{}

	var step uint64
	for !s.IsTerminal() {
		rec, err := branchsearch.Recommend(s, *seed+step, cfg, td, ev, nil)
		if err != nil {
			panic(err)
		}
		fmt.Println(s.String())
		fmt.Printf("recommended: %s (policy=%v)\n", rec.ChosenBranchName, rec.Policy)
		if _, err := s.Step(rec.ChosenBranch); err != nil {
			panic(err)
		}
		step++
	}
	fmt.Println(s.String())
	fmt.Println("game over")
}

func playChess(cfg branchsearch.Config) {
	s := chess.New()
	td := chess.TerminalDetector{}
	rep := chess.RepresentationFactory{}

	ev, err := nneval.New(nneval.DefaultConfig(chess.RepresentationSize), rand.New(rand.NewSource(*seed)))
	if err != nil {
		panic(err)
	}

	var step uint64
	for !s.IsTerminal() {
		rec, err := branchsearch.Recommend(s, *seed+step, cfg, td, ev, rep)
		if err != nil {
			panic(err)
		}
		fmt.Printf("recommended move: %s\n", rec.ChosenBranchName)
		if _, err := s.Step(rec.ChosenBranch); err != nil {
			panic(err)
		}

		fmt.Println("your move (UCI):")
		input := bufio.NewScanner(os.Stdin)
		if !input.Scan() {
			break
		}
		if _, err := s.Step(input.Text()); err != nil {
			fmt.Printf("rejected move: %v\n", err)
		}
		step++
	}
	fmt.Println("game over")
}
