// Package util holds the helpers shared by the integration tests: a
// throwaway Mosquitto broker and a poller for the Prometheus endpoint.
package util

import (
	"context"
	"io"
	"net"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	MosquittoImage        = "eclipse-mosquitto:2.0"
	MosquittoReadyTimeout = 30 * time.Second
	MetricTimeout         = 5 * time.Second

	pollInterval = 50 * time.Millisecond
)

// mosquittoConf allows anonymous clients on the plain listener and keeps no
// state between runs.
const mosquittoConf = `listener 1883
allow_anonymous true
persistence false
log_dest stdout
`

// DockerAvailable reports whether container tests may run: DOCKER_AVAILABLE
// must not be "0" or "false" and the docker binary must be installed.
func DockerAvailable() bool {
	switch strings.ToLower(os.Getenv("DOCKER_AVAILABLE")) {
	case "0", "false", "no":
		return false
	}
	_, err := exec.LookPath("docker")
	return err == nil
}

// FreeAddr returns a loopback address with a free TCP port.
func FreeAddr() (string, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", err
	}
	defer func() { _ = l.Close() }()
	return l.Addr().String(), nil
}

// StartMosquitto runs a broker for the duration of the test and returns its
// tcp:// URL. The test is skipped when Docker is unavailable or the
// container does not start.
func StartMosquitto(t testing.TB) string {
	t.Helper()
	if !DockerAvailable() {
		t.Skip("docker not available")
	}
	ctx := context.Background()
	ctr, err := tc.Run(ctx, MosquittoImage,
		tc.WithExposedPorts("1883/tcp"),
		tc.WithFiles(tc.ContainerFile{
			Reader:            strings.NewReader(mosquittoConf),
			ContainerFilePath: "/mosquitto/config/mosquitto.conf",
			FileMode:          0o644,
		}),
		tc.WithWaitStrategyAndDeadline(MosquittoReadyTimeout,
			wait.ForListeningPort("1883/tcp"),
			wait.ForLog(" running"),
		),
	)
	tc.CleanupContainer(t, ctr)
	if err != nil {
		t.Skipf("mosquitto not started: %v", err)
	}
	broker, err := ctr.PortEndpoint(ctx, "1883/tcp", "tcp")
	require.NoError(t, err)
	return broker
}

// WaitForMetric fails the test unless a scrape of metricsURL contains substr
// within MetricTimeout.
func WaitForMetric(t testing.TB, metricsURL, substr string) {
	t.Helper()
	require.Eventually(t, func() bool {
		body, err := scrape(metricsURL)
		return err == nil && strings.Contains(body, substr)
	}, MetricTimeout, pollInterval, "metric %q not exposed on %s", substr, metricsURL)
}

func scrape(url string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()
	body, err := io.ReadAll(resp.Body)
	return string(body), err
}
