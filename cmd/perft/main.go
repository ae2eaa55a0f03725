package main

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/benbeisheim/chess-backend/internal/config"
	"github.com/benbeisheim/chess-backend/internal/logger"
	"github.com/benbeisheim/chess-backend/internal/model"
	"github.com/benbeisheim/chess-backend/internal/notation"
)

func main() {
	var (
		fen        string
		depth      int
		divide     bool
		crosscheck bool
	)

	cmd := &cobra.Command{
		Use:          "perft",
		Short:        "Count leaf nodes of the legal move tree",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.New(config.LogConfig{Level: "info", Pretty: true})
			if depth < 1 {
				return fmt.Errorf("depth must be at least 1, got %d", depth)
			}

			board, turn, err := notation.ParseFEN(fen)
			if err != nil {
				return err
			}
			game := model.NewGame()
			game.SetBoard(board)
			game.SetTeamTurn(turn)
			out := cmd.OutOrStdout()

			if crosscheck {
				if err := crossCheck(game, fen); err != nil {
					return err
				}
				log.Info().Str("fen", fen).Msg("root moves match dragontoothmg")
			}

			start := time.Now()
			var nodes uint64
			if divide {
				counts := model.PerftDivide(game, depth)
				moves := make([]model.Move, 0, len(counts))
				for m := range counts {
					moves = append(moves, m)
				}
				sort.Slice(moves, func(i, j int) bool { return moves[i].String() < moves[j].String() })
				for _, m := range moves {
					fmt.Fprintf(out, "%s: %d\n", m, counts[m])
					nodes += counts[m]
				}
				fmt.Fprintln(out)
			} else {
				nodes = model.Perft(game, depth)
			}
			fmt.Fprintf(out, "perft(%d) = %d\n", depth, nodes)
			log.Debug().Dur("elapsed", time.Since(start)).Uint64("nodes", nodes).Msg("perft done")
			return nil
		},
	}
	cmd.Flags().StringVar(&fen, "fen", notation.StartFEN, "position to search")
	cmd.Flags().IntVarP(&depth, "depth", "d", 3, "search depth in plies")
	cmd.Flags().BoolVar(&divide, "divide", false, "print the node count below each root move")
	cmd.Flags().BoolVar(&crosscheck, "crosscheck", false, "compare root moves with dragontoothmg first")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func crossCheck(game *model.Game, fen string) error {
	want, err := notation.LegalMovesOracle(fen)
	if err != nil {
		return err
	}
	var got []string
	for _, m := range game.LegalMoves(game.GetTeamTurn()) {
		got = append(got, m.String())
	}
	sort.Strings(want)
	sort.Strings(got)
	if strings.Join(got, " ") != strings.Join(want, " ") {
		return fmt.Errorf("root moves differ from dragontoothmg:\n engine %v\n oracle %v", got, want)
	}
	return nil
}
