package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/organizer/internal/nature"
)

func classifyCmd(e *env) *cobra.Command {
	var scores bool

	cmd := &cobra.Command{
		Use:   "classify PATH...",
		Short: "只显示分类结果与目录 hint，不做任何改动",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := nature.Default()
			w := e.stdout
			for _, p := range args {
				n, err := reg.Classify(p)
				if err != nil {
					fmt.Fprintf(e.stderr, "%s: %v\n", p, err)
					e.code = exitFail
					continue
				}
				fmt.Fprintf(w, "%s\n", n.Path)
				fmt.Fprintf(w, "  类型：%s（%s，置信度 %.2f）\n", n.Kind.DisplayName(), n.Kind, n.Confidence)
				if n.NeedsContainerRemoval() {
					fmt.Fprintf(w, "  整理对象：%s（移动后删除原容器）\n", n.PathToOrganize)
				}

				hints, err := nature.SubdirHints(n)
				if err != nil {
					fmt.Fprintf(e.stderr, "%s: %v\n", p, err)
					e.code = exitFail
					continue
				}
				if len(hints) > 0 {
					fmt.Fprintf(w, "  目录：%s\n", strings.Join(nature.HintTexts(hints), " / "))
				}

				if scores {
					all := reg.Scores(p)
					for _, k := range reg.Kinds() {
						fmt.Fprintf(w, "    %-18s %.2f\n", k, all[k])
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&scores, "scores", false, "同时显示每种类型的得分")
	return cmd
}
