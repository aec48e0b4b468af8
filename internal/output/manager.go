package output

import (
	"fmt"
	"os"
	"sort"
	"sync"
	"time"

	"golang.org/x/term"

	"github.com/swoopdl/swoop/internal/utils"
)

type JobOutput struct {
	ID          int
	Name        string
	Status      string
	Message     string
	Progress    string
	Complete    bool
	StartTime   time.Time
	LastUpdated time.Time
	Error       error
}

type ErrorReport struct {
	JobName string
	Error   error
	Time    time.Time
}

type Manager struct {
	outputs     map[int]*JobOutput
	mutex       sync.RWMutex
	numLines    int
	errors      []ErrorReport
	doneCh      chan struct{}
	displayTick time.Duration
	jobCount    int
	displayWg   sync.WaitGroup
}

func NewManager() *Manager {
	return &Manager{
		outputs:     make(map[int]*JobOutput),
		errors:      []ErrorReport{},
		doneCh:      make(chan struct{}),
		displayTick: 300 * time.Millisecond,
	}
}

func (m *Manager) RegisterJob(name string) int {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.jobCount++
	m.outputs[m.jobCount] = &JobOutput{
		ID:          m.jobCount,
		Name:        name,
		Status:      "pending",
		StartTime:   time.Now(),
		LastUpdated: time.Now(),
	}
	return m.jobCount
}

func (m *Manager) SetStatus(id int, status string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if info, exists := m.outputs[id]; exists {
		info.Status = status
		info.LastUpdated = time.Now()
	}
}

func (m *Manager) SetMessage(id int, message string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if info, exists := m.outputs[id]; exists {
		info.Message = message
		info.LastUpdated = time.Now()
	}
}

// SetProgress updates the rendered progress bar for a job.
func (m *Manager) SetProgress(id int, downloaded, total int64) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if info, exists := m.outputs[id]; exists {
		elapsed := time.Since(info.StartTime).Seconds()
		bar := PrintProgressBar(downloaded, total, 30)
		info.Progress = fmt.Sprintf("%s %s %s", bar, StyleSymbols["bullet"], debugStyle.Render(utils.FormatSpeed(downloaded, elapsed)))
		info.LastUpdated = time.Now()
	}
}

func (m *Manager) Complete(id int, message string) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if info, exists := m.outputs[id]; exists {
		if message == "" {
			message = fmt.Sprintf("Completed %s", info.Name)
		}
		info.Message = message
		info.Progress = ""
		info.Complete = true
		info.Status = "success"
		info.LastUpdated = time.Now()
	}
}

func (m *Manager) ReportError(id int, err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if info, exists := m.outputs[id]; exists {
		info.Complete = true
		info.Status = "error"
		info.Error = err
		info.Progress = ""
		info.LastUpdated = time.Now()
		m.errors = append(m.errors, ErrorReport{JobName: info.Name, Error: err, Time: time.Now()})
	}
}

func (m *Manager) HasErrors() bool {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.errors) > 0
}

func (m *Manager) StartDisplay() {
	m.displayWg.Add(1)
	go func() {
		defer m.displayWg.Done()
		ticker := time.NewTicker(m.displayTick)
		defer ticker.Stop()
		for {
			select {
			case <-m.doneCh:
				m.updateDisplay()
				return
			case <-ticker.C:
				m.updateDisplay()
			}
		}
	}()
}

func (m *Manager) StopDisplay() {
	close(m.doneCh)
	m.displayWg.Wait()
	m.printSummary()
}

func (m *Manager) statusIndicator(status string) string {
	switch status {
	case "success":
		return successStyle.Render(StyleSymbols["pass"])
	case "error":
		return errorStyle.Render(StyleSymbols["fail"])
	case "pending":
		return pendingStyle.Render(StyleSymbols["pending"])
	default:
		return infoStyle.Render(StyleSymbols["bullet"])
	}
}

func (m *Manager) updateDisplay() {
	m.mutex.RLock()
	jobs := make([]*JobOutput, 0, len(m.outputs))
	for _, info := range m.outputs {
		jobs = append(jobs, info)
	}
	m.mutex.RUnlock()
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].ID < jobs[j].ID })

	maxLines := 40
	if _, height, err := term.GetSize(int(os.Stdout.Fd())); err == nil && height > 2 {
		maxLines = height - 2
	}

	if m.numLines > 0 {
		fmt.Printf("\033[%dA\033[J", m.numLines)
	}
	lines := 0
	for _, job := range jobs {
		if lines >= maxLines {
			break
		}
		fmt.Printf("%s %s", m.statusIndicator(job.Status), job.Name)
		if job.Message != "" {
			fmt.Printf(" %s", debugStyle.Render(job.Message))
		}
		fmt.Println()
		lines++
		if job.Progress != "" && lines < maxLines {
			fmt.Printf("  %s\n", job.Progress)
			lines++
		}
	}
	m.numLines = lines
}

func (m *Manager) printSummary() {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	if len(m.errors) == 0 {
		return
	}
	fmt.Println()
	PrintHeader("Errors")
	for _, report := range m.errors {
		fmt.Printf("%s %s %s\n", errorStyle.Render(StyleSymbols["fail"]), report.JobName, debugStyle.Render(report.Error.Error()))
	}
}
