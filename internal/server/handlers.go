package server

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/process"
	"go.uber.org/zap"

	"github.com/Lakshith-P/ipc-debugging-tools/internal/ipc"
)

// startRequest is the body of POST /start.
type startRequest struct {
	Procs    int    `json:"procs" binding:"required,min=1"`
	Channel  string `json:"channel" binding:"required"`
	Deadlock bool   `json:"deadlock"`
}

func (s *Server) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "IPC Debugging Tools",
	})
}

func (s *Server) status(c *gin.Context) {
	resp := gin.H{
		"running":    s.coord.Running(),
		"status":     s.coord.Status(),
		"channel":    s.coord.ChannelKind(),
		"run_id":     s.coord.RunID(),
		"throughput": s.coord.Throughput(),
		"latency":    s.coord.AvgLatency(),
		"frozen":     s.coord.Frozen(),
		"flows":      s.coord.Flows(),
	}

	// Host-process resource usage, best effort.
	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if cpu, err := proc.CPUPercent(); err == nil {
			resp["cpu_percent"] = cpu
		}
		if mem, err := proc.MemoryInfo(); err == nil {
			resp["memory_rss"] = mem.RSS
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (s *Server) timeline(c *gin.Context) {
	c.String(http.StatusOK, s.coord.Timeline())
}

func (s *Server) alert(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"alert": s.coord.Alert()})
}

func (s *Server) start(c *gin.Context) {
	var req startRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	kind, err := ipc.ParseKind(req.Channel)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.coord.Start(req.Procs, kind, req.Deadlock); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"run_id":  s.coord.RunID(),
		"channel": kind,
		"procs":   req.Procs,
	})
}

func (s *Server) stop(c *gin.Context) {
	s.coord.Stop()
	c.JSON(http.StatusOK, gin.H{
		"running": s.coord.Running(),
		"frozen":  s.coord.Frozen(),
	})
}

func (s *Server) export(c *gin.Context) {
	path, err := s.coord.ExportLog()
	if err != nil {
		s.log.Error("log export failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": path})
}
