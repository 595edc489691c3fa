package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"resourcebot/internal/format"

	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/process"
)

const statTimeout = 2 * time.Second

type PingCmd struct{}

func (c *PingCmd) Execute(app *AppContext, _ Query, cc *ChannelContext) {
	cc.Post(getPingText(cc.Context(), app))
}
func (c *PingCmd) Description() string { return "Check bot uptime and store status" }

func getPingText(ctx context.Context, app *AppContext) string {
	var b strings.Builder
	b.WriteString("🏓 Pong!\n\n")
	b.WriteString(fmt.Sprintf("⏱ Uptime: %s\n", format.FormatDuration(app.Uptime())))

	if n, err := app.Store.Count(ctx); err != nil {
		app.LogError("Ping could not count resources", "err", err)
		b.WriteString("📦 Resources: n/a\n")
	} else {
		b.WriteString(fmt.Sprintf("📦 Resources: %d\n", n))
	}

	statCtx, cancel := context.WithTimeout(ctx, statTimeout)
	defer cancel()

	b.WriteString(fmt.Sprintf("🧠 Memory: %s\n", processRSS(statCtx)))
	if app.DBPath != "" {
		b.WriteString(fmt.Sprintf("💾 Store volume free: %s\n", volumeFree(statCtx, app.DBPath)))
	}
	return b.String()
}

func processRSS(ctx context.Context) string {
	p, err := process.NewProcessWithContext(ctx, int32(os.Getpid()))
	if err != nil {
		return "n/a"
	}
	mem, err := p.MemoryInfoWithContext(ctx)
	if err != nil || mem == nil {
		return "n/a"
	}
	return format.FormatRAM(mem.RSS / 1024 / 1024)
}

func volumeFree(ctx context.Context, dbPath string) string {
	dir := filepath.Dir(dbPath)
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	usage, err := disk.UsageWithContext(ctx, dir)
	if err != nil || usage == nil {
		return "n/a"
	}
	return fmt.Sprintf("%s (%.0f%% used)", format.FormatBytes(usage.Free), usage.UsedPercent)
}
