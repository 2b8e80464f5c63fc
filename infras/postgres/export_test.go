package postgres

func DSN(host, port, username, password, dbName, sslMode, timezone string) string {
	return endpoint{
		host:     host,
		port:     port,
		username: username,
		password: password,
		dbName:   dbName,
		sslMode:  sslMode,
		timezone: timezone,
	}.DSN()
}
