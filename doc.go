// Package hzcloud connects to a managed Hazelcast cluster over TLS and runs two demo workloads against it.
//
// # Introduction
//
// A connection starts with a [ConnectionConfig], usually read from HZCLOUD_* environment variables by [LoadConfig],
// and is established by [Connect]
//
//	ctx := context.Background()
//	cfg, err := hzcloud.LoadConfig(ctx, hzcloud.WithEnvFile(".env"))
//	if err != nil {
//		return err
//	}
//	client, err := hzcloud.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer func() {
//		_ = client.Close(context.Background())
//	}()
//
// Configuration problems such as a missing key store are returned as [*ConfigurationError] before any connection
// attempt is made. Failures reported by the hazelcast client are returned as [*ConnectionError] with a
// [ConnectionErrorKind] telling TLS, discovery, authentication and cluster name problems apart.
//
// # TLS material
//
// The key store holds the client certificate chain and private key, the trust store holds the CA certificates.
// Both may be PEM files (the private key may be encrypted with the key store password), PKCS#12 files or
// Java KeyStore files such as the client.keystore and client.truststore downloaded from the cloud console.
// A PKCS#12 trust store must mark its certificates as trusted, as keytool does. With openssl use
//
//	openssl pkcs12 -export -nokeys -in ca.pem -out trust.p12 -jdktrust anyExtendedKeyUsage
//
// Passwords and the discovery token may be given as Vault references, e.g.
// HZCLOUD_DISCOVERY_TOKEN=vault:secret/data/hzcloud#token.
//
// # Map operations
//
//	m, err := client.Map(ctx, "map")
//	if err != nil {
//		return err
//	}
//	err = m.Put(ctx, "key-1", "value-1")
//	if err != nil {
//		return err
//	}
//	val, ok, err := m.Get(ctx, "key-1")
//	if err != nil {
//		return err
//	}
//	fmt.Printf("%s %t\n", val, ok)
//	>>> value-1 true
//
// # SQL
//
// [Client.Query] returns a [RowSet] which must be closed on every path:
//
//	rows, err := client.Query(ctx, "SELECT __key, this FROM cities WHERE __key = ?", "United States")
//	if err != nil {
//		return err
//	}
//	defer rows.Close()
//	for rows.Next() {
//		city, _ := rows.ValueByName("this")
//		fmt.Println(city)
//	}
//	return rows.Err()
//
// # Demo workloads
//
// [RunMapDemo] fills the map "map" with random entries until its context is cancelled. [RunSQLDemo] seeds the
// map "cities", maps it for SQL and prints two queries. Both run against a [Grid], which [*Client] implements.
package hzcloud
