package run

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/John-Robertt/organizer/internal/app"
	"github.com/John-Robertt/organizer/internal/assistant"
	"github.com/John-Robertt/organizer/internal/domain"
)

// errQuit 表示用户在提示符下选择了退出。
var errQuit = errors.New("用户退出")

// Interactive 逐个文件展示助手的猜测，并允许用户修改目标目录或任意一级目录后再确认。
//
// 用户退出（q 或输入结束）时立即停止：当前文件不移动、不写 memory，剩余文件也不再处理。
// 只有读取输入本身出错时才返回 error；单个文件的失败记录在 RunReport 中。
func Interactive(ctx context.Context, opts Options, files []string, in io.Reader, out io.Writer) (domain.RunReport, error) {
	o := opts.withDefaults()
	files = app.DedupPaths(files)
	s := &session{o: o, in: bufio.NewReader(in), out: out}

	rr := newReport(o, false, len(files))
	if o.Observer != nil {
		o.Observer.OnStart(StartInfo{RunID: o.RunID, Total: len(files), DryRun: o.DryRun})
	}

	var runErr error
	for i, f := range files {
		if ctx.Err() != nil {
			break
		}
		started := time.Now()
		res, err := s.organize(f)
		if errors.Is(err, errQuit) {
			break
		}
		if err != nil {
			runErr = err
			break
		}
		rr.Items = append(rr.Items, res)
		logResult(o, res)
		if o.Observer != nil {
			o.Observer.OnItemDone(i+1, len(files), res, time.Since(started))
		}
	}

	rr.FinishedAt = time.Now().UTC()
	rr.Finalize()
	if o.Observer != nil {
		o.Observer.OnFinish(rr)
	}
	return rr, runErr
}

type session struct {
	o   Options
	in  *bufio.Reader
	out io.Writer
}

func (s *session) organize(path string) (domain.ItemResult, error) {
	a, res, ok := begin(s.o, path)
	if !ok {
		return res, nil
	}

	for {
		s.show(a)
		choice, err := s.ask("修改目标目录 (d) * 修改某一级目录 (1-9) * 按当前方案继续（直接回车） * 退出 (q)")
		if err != nil {
			return res, err
		}
		choice = strings.TrimSpace(choice)

		switch {
		case choice == "":
			if dst, ok := a.FinalPath(); ok {
				res.Dst = dst
				commit(s.o, a, &res)
			} else {
				fmt.Fprintf(s.out, "不知道该把 %s 放到哪里，跳过。\n", a.Path())
				skip(&res, domain.ErrCodeUserSkipped, "未设置目标目录，跳过")
			}
			return res, nil

		case choice == "q" || choice == "Q":
			return res, errQuit

		case choice == "d" || choice == "D":
			v, err := s.ask("输入此类文件的新目标目录（留空表示清除）")
			if err != nil {
				return res, err
			}
			if v != "" {
				if v, err = filepath.Abs(v); err != nil {
					fmt.Fprintf(s.out, "无效的目录：%v\n", err)
					continue
				}
			}
			if err := a.ChangeDestination(v); err != nil {
				fail(&res, errorCode(err, domain.ErrCodeIOFailed), err)
				return res, nil
			}

		default:
			n, convErr := strconv.Atoi(choice)
			if convErr != nil || n < 1 {
				fmt.Fprintf(s.out, "无效的选择：%q\n", choice)
				continue
			}
			v, err := s.ask(fmt.Sprintf("输入第 %d 级目录的新名称（留空表示恢复猜测）", n))
			if err != nil {
				return res, err
			}
			if err := a.ChangeSubdir(n-1, v); err != nil {
				fail(&res, errorCode(err, domain.ErrCodeIOFailed), err)
				return res, nil
			}
		}
	}
}

// show 打印助手当前的猜测（分类、目标目录、各级目录与最终路径）。
func (s *session) show(a *assistant.Assistant) {
	n := a.Nature()
	w := s.out

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%s\n", a.Path())
	fmt.Fprintf(w, "  类型：%s（置信度 %.2f）\n", n.Kind.DisplayName(), n.Confidence)
	if d, ok := a.Destination(); ok {
		fmt.Fprintf(w, "  目标目录：%s\n", d)
	} else {
		fmt.Fprintf(w, "  目标目录：（未设置）\n")
	}
	for i, d := range a.Decisions() {
		v := d.Render(s.o.Memory)
		if v == "" {
			v = "（空）"
		}
		fmt.Fprintf(w, "  (%d) %s└ %s%s\n", i+1, strings.Repeat("  ", i), v, decisionTag(d))
	}
	if p, ok := a.FinalPath(); ok {
		fmt.Fprintf(w, "  最终路径：%s\n", p)
	}
}

func decisionTag(d assistant.Decision) string {
	switch {
	case d.Override != "":
		return "  [手动]"
	case d.DestinationHint != "":
		return "  [已存在]"
	case d.Exact:
		return ""
	case d.NatureHint != "":
		return "  [推测]"
	default:
		return ""
	}
}

// ask 打印提示并读取一行；值按原样返回，只去掉行尾换行。输入结束视为退出。
func (s *session) ask(prompt string) (string, error) {
	fmt.Fprintf(s.out, "%s\n>>> ", prompt)
	line, err := s.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("读取输入失败：%w", err)
	}
	if err != nil && line == "" {
		fmt.Fprintln(s.out)
		return "", errQuit
	}
	return strings.TrimRight(line, "\r\n"), nil
}
