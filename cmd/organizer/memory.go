package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/John-Robertt/organizer/internal/config"
	"github.com/John-Robertt/organizer/internal/domain"
	"github.com/John-Robertt/organizer/internal/memory"
)

func memoryCmd(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memory",
		Short: "查看或修改已记住的目标目录与 hint 替换",
	}
	cmd.AddCommand(memoryShowCmd(e))
	cmd.AddCommand(memoryForgetHintCmd(e))
	cmd.AddCommand(memoryForgetDestinationCmd(e))
	return cmd
}

// openMemory 按生效配置打开 memory 后端并加载。
func (e *env) openMemory(readOnly bool) (memory.Backend, *memory.Table, error) {
	eff, err := e.loadConfig(e.cliArgs())
	if err != nil {
		return nil, nil, err
	}
	b, err := memory.Open(eff.MemoryBackend, eff.MemoryPath, readOnly)
	if err != nil {
		return nil, nil, err
	}
	t, err := b.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("读取 memory 失败：%w", err)
	}
	return b, t, nil
}

func memoryShowCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "列出所有记录",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, t, err := e.openMemory(true)
			if err != nil {
				return e.fail(err)
			}
			if t.Len() == 0 {
				fmt.Fprintln(e.stdout, "（memory 为空）")
				return nil
			}
			if ds := t.Destinations(); len(ds) > 0 {
				fmt.Fprintln(e.stdout, "目标目录：")
				for _, d := range ds {
					fmt.Fprintf(e.stdout, "  %-18s %s\n", d.Key, d.Value)
				}
			}
			if hs := t.Hints(); len(hs) > 0 {
				fmt.Fprintln(e.stdout, "hint 替换：")
				for _, h := range hs {
					fmt.Fprintf(e.stdout, "  %s => %s\n", h.Key, h.Value)
				}
			}
			return nil
		},
	}
}

func memoryForgetHintCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "forget-hint RAW",
		Short: "删除某个原始 hint 的替换",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, t, err := e.openMemory(false)
			if err != nil {
				return e.fail(err)
			}
			if _, ok := t.RecallHint(args[0]); !ok {
				fmt.Fprintf(e.stdout, "没有关于 %q 的记录\n", args[0])
				return nil
			}
			t.RememberHint(args[0], "")
			if err := b.Save(t); err != nil {
				return e.fail(err)
			}
			fmt.Fprintf(e.stdout, "已忘记 %q\n", args[0])
			return nil
		},
	}
}

func memoryForgetDestinationCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "forget-destination KIND",
		Short: "删除某种类型记住的目标目录",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, ok := domain.ParseKind(args[0])
			if !ok {
				return fmt.Errorf("未知的类型 %q", args[0])
			}
			b, t, err := e.openMemory(false)
			if err != nil {
				return e.fail(err)
			}
			if _, ok := t.RecallDestination(kind); !ok {
				fmt.Fprintf(e.stdout, "没有关于 %s 的记录\n", kind)
				return nil
			}
			if err := t.RememberDestination(kind, ""); err != nil {
				return e.fail(err)
			}
			if err := b.Save(t); err != nil {
				return e.fail(err)
			}
			fmt.Fprintf(e.stdout, "已忘记 %s 的目标目录\n", kind)
			return nil
		},
	}
}

// fail 打印运行期错误并设置退出码；返回 nil，避免被当成参数错误。
func (e *env) fail(err error) error {
	if c := config.Code(err); c != "" {
		fmt.Fprintf(e.stderr, "配置错误：%v\n", err)
	} else {
		fmt.Fprintf(e.stderr, "%v\n", err)
	}
	e.code = exitFail
	return nil
}
