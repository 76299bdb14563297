package snapshot

import (
	"fmt"
	"io"
	"strings"
)

const reportFooter = "--------------------------------------"

// ReportHeader задает шапку текстового отчета
type ReportHeader struct {
	Title   string
	Members string
}

// Render пишет текстовый отчет. Порядок полей: шапка, загрузка CPU,
// память, статус диска, номер тика
func Render(w io.Writer, header ReportHeader, s Snapshot) error {
	var b strings.Builder

	fmt.Fprintf(&b, "--- System Health Report (%s) ---\n", header.Title)
	if header.Members != "" {
		fmt.Fprintf(&b, "Team Members: %s\n", header.Members)
	}

	if s.IsPlaceholder() {
		b.WriteString("CPU Load: N/A\n")
		b.WriteString("Memory Usage: N/A\n")
		b.WriteString("Disk I/O: N/A\n")
		b.WriteString("(Awaiting first timer tick)\n")
	} else {
		fmt.Fprintf(&b, "CPU Load (1m, 5m, 15m): %s, %s, %s\n", s.Load1, s.Load5, s.Load15)
		fmt.Fprintf(&b, "Memory Usage: Total: %d MB, Free: %d MB, Used: %d MB\n",
			s.TotalMemoryMB, s.FreeMemoryMB, s.UsedMemoryMB)
		fmt.Fprintf(&b, "Disk I/O: %s\n", s.DiskIOStatus)
		fmt.Fprintf(&b, "(Last tick: %d)\n", s.Tick)
	}

	b.WriteString(reportFooter + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderString возвращает отчет строкой
func RenderString(header ReportHeader, s Snapshot) string {
	var b strings.Builder
	_ = Render(&b, header, s)
	return b.String()
}
