// Package monitor implements the optional, read-only HTTP introspection
// server: current time, registered simulators/views,
// host resource usage, and an on-demand CPU profile. Grounded directly
// on monitoring/monitor.go's gorilla/mux-routed server, generalized
// from its sim.Engine/sim.Component introspection to this repo's
// coordinator.Coordinator.
package monitor

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"runtime/pprof"
	"strconv"
	"time"

	// Registers net/http/pprof's handlers on DefaultServeMux.
	_ "net/http/pprof"

	"github.com/google/pprof/profile"
	"github.com/gorilla/mux"
	"github.com/pkg/browser"
	"github.com/shirou/gopsutil/process"
	"github.com/syifan/goseth"

	"github.com/sarchlab/devscore/devstime"
)

// Inspectable is the narrow, read-only view of a running Coordinator
// the monitor server needs — never a mutating handle, since a single
// goroutine owns stepping the simulation.
type Inspectable interface {
	CurrentTime() devstime.Time
	SimulatorNames() []string
	ViewNames() []string
}

// Server is an HTTP introspection endpoint for one Coordinator run.
type Server struct {
	target     Inspectable
	portNumber int
}

// New creates a Server bound to target. Call StartServer to begin
// listening.
func New(target Inspectable) *Server {
	return &Server{target: target}
}

// WithPortNumber fixes the listening port; 0 (the default) picks a free
// port from the OS.
func (s *Server) WithPortNumber(port int) *Server {
	s.portNumber = port
	return s
}

// StartServer starts the introspection server on its own goroutine and
// returns its address, mirroring monitoring/monitor.go's StartServer.
func (s *Server) StartServer() (string, error) {
	r := mux.NewRouter()
	r.HandleFunc("/api/now", s.now)
	r.HandleFunc("/api/simulators", s.simulators)
	r.HandleFunc("/api/views", s.views)
	r.HandleFunc("/api/resource", s.resource)
	r.HandleFunc("/api/profile", s.profile)

	actualPort := ":0"
	if s.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(s.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	if err != nil {
		return "", fmt.Errorf("starting monitor listener: %w", err)
	}

	addr := fmt.Sprintf("http://localhost:%d", listener.Addr().(*net.TCPAddr).Port)

	go func() {
		_ = http.Serve(listener, r)
	}()

	return addr, nil
}

// Open starts the server and opens it in the host's default browser.
func (s *Server) Open() error {
	addr, err := s.StartServer()
	if err != nil {
		return err
	}

	return browser.OpenURL(addr)
}

func (s *Server) now(w http.ResponseWriter, _ *http.Request) {
	fmt.Fprintf(w, `{"now":%.10f}`, float64(s.target.CurrentTime()))
}

func (s *Server) simulators(w http.ResponseWriter, _ *http.Request) {
	serializer := goseth.NewSerializer()
	serializer.SetRoot(s.target.SimulatorNames())

	var buf bytes.Buffer
	if err := serializer.Serialize(&buf); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	_, _ = w.Write(buf.Bytes())
}

func (s *Server) views(w http.ResponseWriter, _ *http.Request) {
	_ = json.NewEncoder(w).Encode(s.target.ViewNames())
}

type resourceResponse struct {
	CPUPercent float64 `json:"cpu_percent"`
	MemorySize uint64  `json:"memory_size"`
}

func (s *Server) resource(w http.ResponseWriter, _ *http.Request) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	cpuPercent, err := proc.CPUPercent()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	mem, err := proc.MemoryInfo()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	_ = json.NewEncoder(w).Encode(resourceResponse{CPUPercent: cpuPercent, MemorySize: mem.RSS})
}

func (s *Server) profile(w http.ResponseWriter, _ *http.Request) {
	buf := bytes.NewBuffer(nil)

	if err := pprof.StartCPUProfile(buf); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	time.Sleep(time.Second)
	pprof.StopCPUProfile()

	prof, err := profile.ParseData(buf.Bytes())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	_ = json.NewEncoder(w).Encode(prof)
}
