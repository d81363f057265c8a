package certs

import (
	"crypto/tls"
	"crypto/x509"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, cert tls.Certificate) *x509.Certificate {
	t.Helper()
	require.Len(t, cert.Certificate, 1)
	parsed, err := x509.ParseCertificate(cert.Certificate[0])
	require.NoError(t, err)
	return parsed
}

func TestFileManager_GetOrCreateCertificate(t *testing.T) {
	tests := []struct {
		setup         func(t *testing.T, certDir string)
		check         func(t *testing.T, certDir string, cert tls.Certificate)
		name          string
		errorContains string
		wantErr       bool
	}{
		{
			name: "creates a certificate when none exists",
			check: func(t *testing.T, _ string, cert tls.Certificate) {
				t.Helper()
				parsed := parse(t, cert)
				assert.Equal(t, []string{"Kantoor"}, parsed.Subject.Organization)
				assert.NoError(t, parsed.VerifyHostname("localhost"))
				assert.True(t, parsed.NotAfter.After(time.Now().Add(Validity-time.Hour)))
			},
		},
		{
			name: "reuses a valid certificate",
			setup: func(t *testing.T, certDir string) {
				t.Helper()
				_, err := NewFileManager(certDir).GetOrCreateCertificate()
				require.NoError(t, err)
			},
			check: func(t *testing.T, certDir string, cert tls.Certificate) {
				t.Helper()
				again, err := NewFileManager(certDir).GetOrCreateCertificate()
				require.NoError(t, err)
				assert.Equal(t, cert.Certificate[0], again.Certificate[0])
			},
		},
		{
			name: "replaces unreadable files",
			setup: func(t *testing.T, certDir string) {
				t.Helper()
				require.NoError(t, os.MkdirAll(certDir, 0o700))
				require.NoError(t, os.WriteFile(filepath.Join(certDir, "localhost.crt"), []byte("garbage"), 0o600))
				require.NoError(t, os.WriteFile(filepath.Join(certDir, "localhost.key"), []byte("garbage"), 0o600))
			},
			check: func(t *testing.T, _ string, cert tls.Certificate) {
				t.Helper()
				assert.True(t, parse(t, cert).NotBefore.After(time.Now().Add(-2*time.Minute)))
			},
		},
		{
			name: "fails when the directory is a file",
			setup: func(t *testing.T, certDir string) {
				t.Helper()
				require.NoError(t, os.WriteFile(certDir, []byte("not a directory"), 0o600))
			},
			wantErr:       true,
			errorContains: "failed to check certificate",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			certDir := filepath.Join(t.TempDir(), "certs")
			if tt.setup != nil {
				tt.setup(t, certDir)
			}

			cert, err := NewFileManager(certDir).GetOrCreateCertificate()
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorContains)
				return
			}
			require.NoError(t, err)

			for _, name := range []string{"localhost.crt", "localhost.key"} {
				info, err := os.Stat(filepath.Join(certDir, name))
				require.NoError(t, err)
				assert.Equal(t, os.FileMode(0o600), info.Mode().Perm(), name)
			}
			if tt.check != nil {
				tt.check(t, certDir, cert)
			}
		})
	}
}

func TestFileManager_RenewsExpiringCertificate(t *testing.T) {
	certDir := filepath.Join(t.TempDir(), "certs")

	old := NewFileManager(certDir)
	old.now = func() time.Time { return time.Now().Add(-Validity + 24*time.Hour) }
	first, err := old.GetOrCreateCertificate()
	require.NoError(t, err)

	second, err := NewFileManager(certDir).GetOrCreateCertificate()
	require.NoError(t, err)
	assert.NotEqual(t, first.Certificate[0], second.Certificate[0])
	assert.True(t, parse(t, second).NotAfter.After(time.Now().Add(30*24*time.Hour)))
}

func TestFileManager_CertificateExists(t *testing.T) {
	tests := []struct {
		name  string
		files []string
		want  bool
	}{
		{name: "no files"},
		{name: "both files", files: []string{"localhost.crt", "localhost.key"}, want: true},
		{name: "certificate only", files: []string{"localhost.crt"}},
		{name: "key only", files: []string{"localhost.key"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			certDir := t.TempDir()
			for _, f := range tt.files {
				require.NoError(t, os.WriteFile(filepath.Join(certDir, f), []byte("x"), 0o600))
			}

			exists, err := NewFileManager(certDir).CertificateExists()
			require.NoError(t, err)
			assert.Equal(t, tt.want, exists)
		})
	}
}

func TestCertificateProperties(t *testing.T) {
	cert, err := NewFileManager(t.TempDir()).GetOrCreateCertificate()
	require.NoError(t, err)
	parsed := parse(t, cert)

	assert.Equal(t, []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth}, parsed.ExtKeyUsage)
	assert.Contains(t, parsed.DNSNames, "*.localhost")

	var v4, v6 bool
	for _, ip := range parsed.IPAddresses {
		v4 = v4 || ip.Equal(net.IPv4(127, 0, 0, 1))
		v6 = v6 || ip.Equal(net.IPv6loopback)
	}
	assert.True(t, v4, "IPv4 loopback")
	assert.True(t, v6, "IPv6 loopback")

	assert.Error(t, (&FileManager{now: time.Now}).verifyCertificate(tls.Certificate{}))
}
