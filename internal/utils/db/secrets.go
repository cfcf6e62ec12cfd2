package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// secretGetter é o recorte do cliente do Secrets Manager que usamos.
type secretGetter interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

var newSecretsClient = func(ctx context.Context) (secretGetter, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return secretsmanager.NewFromConfig(cfg), nil
}

func retrieveCredentials(ctx context.Context, secretID string) (Credentials, error) {
	if secretID == "" {
		return Credentials{}, errors.New("credenciais do banco ausentes: defina DB_USERNAME/DB_PASSWORD ou DB_SECRET_ID")
	}

	client, err := newSecretsClient(ctx)
	if err != nil {
		return Credentials{}, fmt.Errorf("configuração aws: %w", err)
	}
	return fetchCredentials(ctx, client, secretID)
}

func fetchCredentials(ctx context.Context, client secretGetter, secretID string) (Credentials, error) {
	result, err := client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId:     aws.String(secretID),
		VersionStage: aws.String("AWSCURRENT"),
	})
	if err != nil {
		return Credentials{}, fmt.Errorf("ler segredo %s: %w", secretID, err)
	}
	if result.SecretString == nil {
		return Credentials{}, fmt.Errorf("segredo %s sem SecretString", secretID)
	}

	var secret Credentials
	if err := json.Unmarshal([]byte(*result.SecretString), &secret); err != nil {
		return Credentials{}, fmt.Errorf("segredo %s inválido: %w", secretID, err)
	}
	return secret, nil
}
