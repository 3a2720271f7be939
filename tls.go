package hzcloud

import (
	"bytes"
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/tls"
	"crypto/x509"
	"encoding/binary"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pavlo-v-chernykh/keystore-go/v4"
	"software.sslmate.com/src/go-pkcs12"
)

const jksMagic uint32 = 0xFEEDFEED

type storeFormat int

const (
	pemStore storeFormat = iota
	pkcs12Store
	javaKeyStore
)

func (f storeFormat) String() string {
	switch f {
	case pkcs12Store:
		return "PKCS#12"
	case javaKeyStore:
		return "JKS"
	default:
		return "PEM"
	}
}

// loadTLSConfig builds the client TLS configuration from the key store (client certificate chain and private key)
// and the trust store (CA certificates). Stores may be PEM, PKCS#12 or Java KeyStore files.
func loadTLSConfig(cfg *ConnectionConfig) (*tls.Config, error) {
	cert, err := loadKeyStore(cfg.KeyStorePath, cfg.KeyStorePassword)
	if err != nil {
		return nil, err
	}
	roots, err := loadTrustStore(cfg.TrustStorePath, cfg.TrustStorePassword)
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		MinVersion:   tls.VersionTLS12,
		ServerName:   cfg.TLSServerName,
		RootCAs:      roots,
		Certificates: []tls.Certificate{cert},
	}, nil
}

func loadKeyStore(path string, password string) (tls.Certificate, error) {
	data, format, err := readStore("key store", path)
	if err != nil {
		return tls.Certificate{}, err
	}
	var cert tls.Certificate
	switch format {
	case pkcs12Store:
		cert, err = pkcs12KeyStore(data, password)
	case javaKeyStore:
		cert, err = javaKeyStoreEntry(data, password)
	default:
		cert, err = pemKeyStore(data, password)
	}
	if err != nil {
		return cert, createConfigurationError(fmt.Sprintf("failed to load %s key store %s", format, path), err)
	}
	if len(cert.Certificate) == 0 {
		return cert, createConfigurationError(fmt.Sprintf("key store %s contains no certificate", path), nil)
	}
	if cert.PrivateKey == nil {
		return cert, createConfigurationError(fmt.Sprintf("key store %s contains no private key", path), nil)
	}
	return cert, nil
}

func loadTrustStore(path string, password string) (*x509.CertPool, error) {
	data, format, err := readStore("trust store", path)
	if err != nil {
		return nil, err
	}
	var certs []*x509.Certificate
	switch format {
	case pkcs12Store:
		certs, err = pkcs12TrustStore(data, password)
	case javaKeyStore:
		certs, err = javaTrustedCertificates(data, password)
	default:
		certs, err = pemCertificates(data)
	}
	if err != nil {
		return nil, createConfigurationError(fmt.Sprintf("failed to load %s trust store %s", format, path), err)
	}
	if len(certs) == 0 {
		return nil, createConfigurationError(fmt.Sprintf("trust store %s contains no certificate", path), nil)
	}
	pool := x509.NewCertPool()
	for _, cert := range certs {
		pool.AddCert(cert)
	}
	return pool, nil
}

func readStore(name string, path string) ([]byte, storeFormat, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, pemStore, createConfigurationError(fmt.Sprintf("failed to read %s %s", name, path), err)
	}
	switch {
	case isJavaKeyStore(data):
		return data, javaKeyStore, nil
	case isPKCS12(path, data):
		return data, pkcs12Store, nil
	default:
		return data, pemStore, nil
	}
}

func pkcs12KeyStore(data []byte, password string) (tls.Certificate, error) {
	key, leaf, chain, err := pkcs12.DecodeChain(data, password)
	if err != nil {
		return tls.Certificate{}, err
	}
	cert := tls.Certificate{PrivateKey: key, Leaf: leaf}
	cert.Certificate = append(cert.Certificate, leaf.Raw)
	for _, ca := range chain {
		cert.Certificate = append(cert.Certificate, ca.Raw)
	}
	return cert, nil
}

// pkcs12TrustStore reads Java style trust stores. Stores without the Java trust attribute are accepted when they
// carry a key entry, their certificates are trusted then.
func pkcs12TrustStore(data []byte, password string) ([]*x509.Certificate, error) {
	certs, err := pkcs12.DecodeTrustStore(data, password)
	if err == nil {
		return certs, nil
	}
	_, leaf, chain, chainErr := pkcs12.DecodeChain(data, password)
	if chainErr != nil {
		return nil, err
	}
	return append(chain, leaf), nil
}

func javaKeyStoreEntry(data []byte, password string) (tls.Certificate, error) {
	cert := tls.Certificate{}
	ks := keystore.New()
	if err := ks.Load(bytes.NewReader(data), []byte(password)); err != nil {
		return cert, err
	}
	for _, alias := range ks.Aliases() {
		if !ks.IsPrivateKeyEntry(alias) {
			continue
		}
		entry, err := ks.GetPrivateKeyEntry(alias, []byte(password))
		if err != nil {
			return cert, fmt.Errorf("entry %s: %w", alias, err)
		}
		if cert.PrivateKey, err = parsePrivateKey(entry.PrivateKey); err != nil {
			return cert, fmt.Errorf("entry %s: %w", alias, err)
		}
		for _, c := range entry.CertificateChain {
			cert.Certificate = append(cert.Certificate, c.Content)
		}
		return cert, nil
	}
	return cert, nil
}

func javaTrustedCertificates(data []byte, password string) ([]*x509.Certificate, error) {
	ks := keystore.New()
	if err := ks.Load(bytes.NewReader(data), []byte(password)); err != nil {
		return nil, err
	}
	var certs []*x509.Certificate
	for _, alias := range ks.Aliases() {
		if !ks.IsTrustedCertificateEntry(alias) {
			continue
		}
		entry, err := ks.GetTrustedCertificateEntry(alias)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", alias, err)
		}
		cert, err := x509.ParseCertificate(entry.Certificate.Content)
		if err != nil {
			return nil, fmt.Errorf("entry %s: %w", alias, err)
		}
		certs = append(certs, cert)
	}
	return certs, nil
}

func pemKeyStore(data []byte, password string) (tls.Certificate, error) {
	cert := tls.Certificate{}
	blocks, err := pemBlocks(data)
	if err != nil {
		return cert, err
	}
	for _, derBlock := range blocks {
		if derBlock.Type == "CERTIFICATE" {
			cert.Certificate = append(cert.Certificate, derBlock.Bytes)
		} else if derBlock.Type == "PRIVATE KEY" || strings.HasSuffix(derBlock.Type, " PRIVATE KEY") {
			keyBlock := derBlock.Bytes
			//lint:ignore SA1019 legacy encrypted PEM keys are still issued for cloud clusters
			//nolint:staticcheck
			if x509.IsEncryptedPEMBlock(derBlock) {
				//lint:ignore SA1019 see above
				//nolint:staticcheck
				keyBlock, err = x509.DecryptPEMBlock(derBlock, []byte(password))
				if err != nil {
					return cert, fmt.Errorf("failed to decrypt private key: %w", err)
				}
			}
			cert.PrivateKey, err = parsePrivateKey(keyBlock)
			if err != nil {
				return cert, fmt.Errorf("failed to parse private key: %w", err)
			}
		}
	}
	return cert, nil
}

func pemCertificates(data []byte) ([]*x509.Certificate, error) {
	blocks, err := pemBlocks(data)
	if err != nil {
		return nil, err
	}
	var certs []*x509.Certificate
	for _, block := range blocks {
		if block.Type != "CERTIFICATE" {
			continue
		}
		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse certificate: %w", err)
		}
		certs = append(certs, cert)
	}
	return certs, nil
}

func pemBlocks(data []byte) ([]*pem.Block, error) {
	var blocks []*pem.Block
	rest := data
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		blocks = append(blocks, block)
	}
	if len(blocks) == 0 {
		return nil, errors.New("no PEM data found")
	}
	return blocks, nil
}

func isJavaKeyStore(data []byte) bool {
	return len(data) >= 4 && binary.BigEndian.Uint32(data) == jksMagic
}

func isPKCS12(path string, data []byte) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".p12", ".pfx":
		return true
	}
	// DER encoded stores start with an ASN.1 SEQUENCE, PEM files with text.
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == 0x30
}

func parsePrivateKey(der []byte) (crypto.PrivateKey, error) {
	if key, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return key, nil
	}
	if key, err := x509.ParsePKCS8PrivateKey(der); err == nil {
		switch key := key.(type) {
		case *rsa.PrivateKey, *ecdsa.PrivateKey, ed25519.PrivateKey:
			return key, nil
		default:
			return nil, errors.New("tls: found unknown private key type in PKCS#8 wrapping")
		}
	}
	if key, err := x509.ParseECPrivateKey(der); err == nil {
		return key, nil
	}

	return nil, errors.New("tls: failed to parse private key")
}
