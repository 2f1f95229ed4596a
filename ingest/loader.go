// Package ingest 实现交互数据的批量装载：把两列分隔文本解析为 Interaction 记录。
package ingest

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rushteam/cfkit/core"
)

// Policy 控制坏记录的处理策略。
// 两种策略都是显式选择：不允许静默地"有时跳过有时报错"。
type Policy string

const (
	// PolicyFailFast 遇到第一条坏记录立即失败（默认）
	PolicyFailFast Policy = "fail_fast"

	// PolicySkip 跳过坏记录继续装载
	PolicySkip Policy = "skip"
)

// Loader 从两列分隔文本解析交互记录。
//
// 输入格式：每行 "userID{Sep}itemID"，空行跳过。
// 列数不等于 2、或任一列为空，视为坏记录（MALFORMED_RECORD）。
//
// 零值 Loader 等价于逗号分隔、fail-fast。
type Loader struct {
	// Sep 列分隔符，默认 ","
	Sep string

	// Policy 坏记录处理策略，默认 PolicyFailFast
	Policy Policy

	// Skipped 记录最近一次 Read 因 PolicySkip 跳过的行数
	Skipped int
}

func (l *Loader) sep() string {
	if l.Sep == "" {
		return ","
	}
	return l.Sep
}

// Read 解析 r 中的全部记录。
// PolicyFailFast 下任何坏记录使整次装载失败并返回 MALFORMED_RECORD 错误。
func (l *Loader) Read(r io.Reader) ([]core.Interaction, error) {
	l.Skipped = 0
	sep := l.sep()

	var records []core.Interaction
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		parts := strings.Split(line, sep)
		if len(parts) != 2 || strings.TrimSpace(parts[0]) == "" || strings.TrimSpace(parts[1]) == "" {
			if l.Policy == PolicySkip {
				l.Skipped++
				continue
			}
			return nil, core.NewDomainError(core.ModuleIngest, core.ErrorCodeMalformedRecord,
				fmt.Sprintf("ingest: malformed record at line %d: %q", lineNo, line))
		}

		records = append(records, core.Interaction{
			UserID: strings.TrimSpace(parts[0]),
			ItemID: strings.TrimSpace(parts[1]),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("ingest: scan: %w", err)
	}
	return records, nil
}

// ReadFile 从文件解析全部记录。
func (l *Loader) ReadFile(path string) ([]core.Interaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ingest: open %s: %w", path, err)
	}
	defer f.Close()
	return l.Read(f)
}

// LoadInto 解析 r 并装载进交互存储，返回装载的记录数。
func (l *Loader) LoadInto(ctx context.Context, r io.Reader, dst core.InteractionLoader) (int, error) {
	records, err := l.Read(r)
	if err != nil {
		return 0, err
	}
	if err := dst.Load(ctx, records); err != nil {
		return 0, err
	}
	return len(records), nil
}
