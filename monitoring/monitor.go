// Package monitoring turns a running bus emulation into a small web server
// so that its state can be inspected from outside: the current cycle, the
// values on the bench lines, the bursts serviced so far, and the resource
// usage of the emulating process.
package monitoring

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"sync"

	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"

	"github.com/sarchlab/ambasim/amba"
	"github.com/sarchlab/ambasim/hw"
	"github.com/sarchlab/ambasim/timing"
)

// A Monitor serves the state of one emulation over HTTP.
type Monitor struct {
	clock      *timing.Clock
	portNumber int
	url        string

	linesLock sync.Mutex
	lines     []hw.Line

	transactionsLock sync.Mutex
	transactions     []amba.Transaction
}

// NewMonitor creates a new Monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// WithPortNumber sets the port served on. Ports below 1000 are rejected and
// replaced with a random port.
func (m *Monitor) WithPortNumber(portNumber int) *Monitor {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is not allowed for the monitoring server. "+
				"Using a random port instead.\n", portNumber)
		portNumber = 0
	}

	m.portNumber = portNumber

	return m
}

// RegisterClock registers the clock driving the emulation.
func (m *Monitor) RegisterClock(c *timing.Clock) {
	m.clock = c
}

// RegisterLine adds a bus line to the set exposed by the line endpoint.
func (m *Monitor) RegisterLine(l hw.Line) {
	m.linesLock.Lock()
	defer m.linesLock.Unlock()

	m.lines = append(m.lines, l)
}

// RecordTransaction appends a serviced burst. This is the method to hand to
// a slave engine as its callback.
func (m *Monitor) RecordTransaction(tr amba.Transaction) {
	m.transactionsLock.Lock()
	defer m.transactionsLock.Unlock()

	m.transactions = append(m.transactions, tr)
}

// Router returns the HTTP routes the monitor serves.
func (m *Monitor) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/now", m.now)
	r.HandleFunc("/api/lines", m.listLines)
	r.HandleFunc("/api/transactions", m.listTransactions)
	r.HandleFunc("/api/resource", m.listResources)

	return r
}

// StartServer starts serving. It returns the URL served on.
func (m *Monitor) StartServer() string {
	actualPort := ":0"
	if m.portNumber != 0 {
		actualPort = ":" + strconv.Itoa(m.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	dieOnErr(err)

	m.url = fmt.Sprintf("http://localhost:%d",
		listener.Addr().(*net.TCPAddr).Port)
	fmt.Fprintf(os.Stderr, "Monitoring emulation with %s\n", m.url)

	router := m.Router()
	go func() {
		dieOnErr(http.Serve(listener, router))
	}()

	return m.url
}

// OpenBrowser opens the monitor URL in the default browser.
func (m *Monitor) OpenBrowser() {
	if m.url == "" {
		panic("monitor server is not started")
	}

	_ = browser.OpenURL(m.url)
}

func (m *Monitor) now(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprintf(w, "{\"cycle\":%d}", m.clock.CurrentCycle())
}

type lineState struct {
	Name  string `json:"name"`
	Width int    `json:"width"`
	Value string `json:"value"`
}

func (m *Monitor) listLines(w http.ResponseWriter, _ *http.Request) {
	m.linesLock.Lock()
	defer m.linesLock.Unlock()

	states := make([]lineState, 0, len(m.lines))
	for _, l := range m.lines {
		states = append(states, lineState{
			Name:  l.Name(),
			Width: l.Width(),
			Value: hex.EncodeToString(l.Bytes()),
		})
	}

	dieOnErr(json.NewEncoder(w).Encode(states))
}

type transactionState struct {
	Write       bool   `json:"write"`
	Addr        uint64 `json:"addr"`
	Length      int    `json:"length"`
	BytesInBeat uint64 `json:"bytes_in_beat"`
	Resp        string `json:"resp"`
}

func (m *Monitor) listTransactions(w http.ResponseWriter, _ *http.Request) {
	m.transactionsLock.Lock()
	defer m.transactionsLock.Unlock()

	states := make([]transactionState, 0, len(m.transactions))
	for _, tr := range m.transactions {
		states = append(states, transactionState{
			Write:       tr.Write,
			Addr:        tr.Addr,
			Length:      tr.Length,
			BytesInBeat: tr.BytesInBeat,
			Resp:        tr.Resp.String(),
		})
	}

	dieOnErr(json.NewEncoder(w).Encode(states))
}

func (m *Monitor) listResources(w http.ResponseWriter, _ *http.Request) {
	p, err := process.NewProcess(int32(os.Getpid()))
	dieOnErr(err)

	memInfo, err := p.MemoryInfo()
	dieOnErr(err)

	cpuPercent, err := p.CPUPercent()
	dieOnErr(err)

	fmt.Fprintf(w, "{\"memory_rss\":%d,\"cpu_percent\":%f}",
		memInfo.RSS, cpuPercent)
}

func dieOnErr(err error) {
	if err != nil {
		panic(err)
	}
}
