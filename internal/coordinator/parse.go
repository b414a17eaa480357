package coordinator

import (
	"slices"
	"strconv"
	"strings"
	"time"
)

// maxFlows bounds the retained data-flow history.
const maxFlows = 128

// ingest appends one worker log line to the timeline, extracts metrics and
// visualization events from it, and fans it out to subscribers.
func (c *Coordinator) ingest(line string) {
	c.mu.Lock()
	c.timeline = append(c.timeline, line)

	if pid, ok := parsePID(line); ok {
		if dst, ok := parseSendTarget(line); ok {
			c.flows = append(c.flows, DataFlow{Src: pid, Dst: dst, At: time.Now()})
			if len(c.flows) > maxFlows {
				c.flows = c.flows[len(c.flows)-maxFlows:]
			}
			c.metrics.MessagesSent.WithLabelValues(strconv.Itoa(pid)).Inc()
		}

		if lat, ok := parseLatency(line); ok {
			c.msgCount++
			c.totalLatency += lat
			c.metrics.MessagesReceived.Inc()
			c.metrics.MessageLatency.Observe(lat)
		}

		if isFreezeAnnouncement(line) && !slices.Contains(c.frozen, pid) {
			c.frozen = append(c.frozen, pid)
			c.metrics.WorkersFrozen.Set(float64(len(c.frozen)))
		}
	}

	subs := make([]chan string, 0, len(c.subs))
	for _, s := range c.subs {
		subs = append(subs, s)
	}
	c.mu.Unlock()

	for _, s := range subs {
		select {
		case s <- line:
		default:
		}
	}
}

// parsePID extracts the worker id from the "[P<id>]" prefix.
func parsePID(line string) (int, bool) {
	if !strings.HasPrefix(line, "[P") {
		return 0, false
	}
	end := strings.IndexByte(line, ']')
	if end < 0 {
		return 0, false
	}
	pid, err := strconv.Atoi(line[2:end])
	if err != nil {
		return 0, false
	}
	return pid, true
}

// parseSendTarget extracts the destination id from a "Sending ... to P<dst>"
// line.
func parseSendTarget(line string) (int, bool) {
	if !strings.Contains(line, "Sending") {
		return 0, false
	}
	at := strings.LastIndex(line, " to P")
	if at < 0 {
		return 0, false
	}
	dst, err := strconv.Atoi(line[at+len(" to P"):])
	if err != nil {
		return 0, false
	}
	return dst, true
}

// parseLatency extracts the seconds value from a "..., latency=<float>s"
// line.
func parseLatency(line string) (float64, bool) {
	at := strings.Index(line, "latency=")
	if at < 0 {
		return 0, false
	}
	rest := line[at+len("latency="):]
	end := strings.IndexByte(rest, 's')
	if end < 0 {
		return 0, false
	}
	lat, err := strconv.ParseFloat(rest[:end], 64)
	if err != nil {
		return 0, false
	}
	return lat, true
}

// isFreezeAnnouncement reports whether the line marks a deadlock-demo
// worker about to block on its second lock.
func isFreezeAnnouncement(line string) bool {
	return strings.Contains(line, "DEADLOCK_MODE") &&
		strings.Contains(line, "Trying to acquire Lock")
}
