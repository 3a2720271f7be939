package hzcloud

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pavlo-v-chernykh/keystore-go/v4"
	"github.com/stretchr/testify/require"
	"software.sslmate.com/src/go-pkcs12"
)

const (
	testServerName = "hazelcast.cloud"
	storePassword  = "654321"
)

type testPKI struct {
	caCert     *x509.Certificate
	caKey      *ecdsa.PrivateKey
	caPEM      []byte
	clientPEM  []byte
	clientKey  *ecdsa.PrivateKey
	clientCert *x509.Certificate
}

func newTestPKI(t *testing.T) *testPKI {
	t.Helper()
	caKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	caTmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "test-ca"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
	}
	caDER, err := x509.CreateCertificate(rand.Reader, caTmpl, caTmpl, &caKey.PublicKey, caKey)
	require.NoError(t, err)
	caCert, err := x509.ParseCertificate(caDER)
	require.NoError(t, err)

	pki := &testPKI{
		caCert: caCert,
		caKey:  caKey,
		caPEM:  pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: caDER}),
	}
	pki.clientKey, pki.clientPEM = pki.issue(t, "go-hzcloud-client", x509.ExtKeyUsageClientAuth)
	block, _ := pem.Decode(pki.clientPEM)
	pki.clientCert, err = x509.ParseCertificate(block.Bytes)
	require.NoError(t, err)
	return pki
}

func (pki *testPKI) issue(t *testing.T, cn string, usage x509.ExtKeyUsage) (*ecdsa.PrivateKey, []byte) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(time.Now().UnixNano()),
		Subject:      pkix.Name{CommonName: cn},
		DNSNames:     []string{cn},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{usage},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, pki.caCert, &key.PublicKey, pki.caKey)
	require.NoError(t, err)
	return key, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
}

func keyPEM(t *testing.T, key *ecdsa.PrivateKey, password string) []byte {
	t.Helper()
	der, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)
	block := &pem.Block{Type: "EC PRIVATE KEY", Bytes: der}
	if len(password) != 0 {
		//lint:ignore SA1019 the client must still read legacy encrypted keys
		//nolint:staticcheck
		block, err = x509.EncryptPEMBlock(rand.Reader, block.Type, der, []byte(password), x509.PEMCipherAES256)
		require.NoError(t, err)
	}
	return pem.EncodeToMemory(block)
}

// writeStores writes a PEM key store (certificate and key, encrypted when password is set) and a PEM trust store.
func (pki *testPKI) writeStores(t *testing.T, password string) (keyStore string, trustStore string) {
	t.Helper()
	dir := t.TempDir()
	keyStore = filepath.Join(dir, "client.pem")
	trustStore = filepath.Join(dir, "ca.pem")
	data := append(append([]byte{}, pki.clientPEM...), keyPEM(t, pki.clientKey, password)...)
	require.NoError(t, os.WriteFile(keyStore, data, 0o600))
	require.NoError(t, os.WriteFile(trustStore, pki.caPEM, 0o600))
	return keyStore, trustStore
}

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

// writePKCS12Stores writes a key store holding the client chain and a Java style trust store holding the CA.
func (pki *testPKI) writePKCS12Stores(t *testing.T, enc *pkcs12.Encoder, password string) (keyStore string, trustStore string) {
	t.Helper()
	keyData, err := enc.Encode(pki.clientKey, pki.clientCert, []*x509.Certificate{pki.caCert}, password)
	require.NoError(t, err)
	trustData, err := enc.EncodeTrustStore([]*x509.Certificate{pki.caCert}, password)
	require.NoError(t, err)
	return writeFile(t, "client.p12", keyData), writeFile(t, "trust.p12", trustData)
}

// writeJavaKeyStores writes client.keystore and client.truststore the way keytool lays them out.
func (pki *testPKI) writeJavaKeyStores(t *testing.T, password string) (keyStore string, trustStore string) {
	t.Helper()
	pkcs8, err := x509.MarshalPKCS8PrivateKey(pki.clientKey)
	require.NoError(t, err)
	now := time.Now()

	ks := keystore.New()
	require.NoError(t, ks.SetPrivateKeyEntry("client", keystore.PrivateKeyEntry{
		CreationTime: now,
		PrivateKey:   pkcs8,
		CertificateChain: []keystore.Certificate{
			{Type: "X509", Content: pki.clientCert.Raw},
			{Type: "X509", Content: pki.caCert.Raw},
		},
	}, []byte(password)))
	keyStore = filepath.Join(t.TempDir(), "client.keystore")
	storeJavaKeyStore(t, ks, keyStore, password)

	ts := keystore.New()
	require.NoError(t, ts.SetTrustedCertificateEntry("ca", keystore.TrustedCertificateEntry{
		CreationTime: now,
		Certificate:  keystore.Certificate{Type: "X509", Content: pki.caCert.Raw},
	}))
	trustStore = filepath.Join(t.TempDir(), "client.truststore")
	storeJavaKeyStore(t, ts, trustStore, password)
	return keyStore, trustStore
}

func storeJavaKeyStore(t *testing.T, ks keystore.KeyStore, path string, password string) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() {
		_ = f.Close()
	}()
	require.NoError(t, ks.Store(f, []byte(password)))
}
