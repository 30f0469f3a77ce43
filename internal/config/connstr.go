package config

import "fmt"

func MakeConnStr(conf Database) (string, error) {
	host, err := conf.Host.Load()
	if err != nil {
		return "", fmt.Errorf("loading db host: %w", err)
	}

	user, err := conf.User.Load()
	if err != nil {
		return "", fmt.Errorf("loading db user: %w", err)
	}

	password, err := conf.Password.Load()
	if err != nil {
		return "", fmt.Errorf("loading db password: %w", err)
	}

	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s",
		host, user, password, conf.Name, conf.Port), nil
}
