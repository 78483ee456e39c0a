package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// ObjectStorage es la interfaz que el núcleo consume: se guarda solo la
// llave del objeto y la URL de lectura se resuelve de forma perezosa con
// URLs pre-firmadas.
type ObjectStorage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	PresignURL(key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

// S3Storage implementa ObjectStorage contra un bucket S3 privado.
type S3Storage struct {
	client  *s3.S3
	bucket  string
	timeout time.Duration
}

// Config son los parámetros de conexión del bucket.
type Config struct {
	Region   string
	Bucket   string
	Endpoint string
	Timeout  time.Duration
}

// NewS3Storage crea el cliente S3. Las credenciales vienen de la cadena
// por defecto del SDK (variables de entorno o rol IAM).
func NewS3Storage(cfg Config) (*S3Storage, error) {
	awsCfg := &aws.Config{Region: aws.String(cfg.Region)}
	if cfg.Endpoint != "" {
		awsCfg.Endpoint = aws.String(cfg.Endpoint)
		awsCfg.S3ForcePathStyle = aws.Bool(true)
	}

	sess, err := session.NewSession(awsCfg)
	if err != nil {
		return nil, fmt.Errorf("storage: no se pudo crear la sesión de S3: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &S3Storage{client: s3.New(sess), bucket: cfg.Bucket, timeout: timeout}, nil
}

// Put sube el objeto y devuelve su llave. El bucket es privado: nunca se
// devuelve una URL pública.
func (s *S3Storage) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.client.PutObjectWithContext(ctx, &s3.PutObjectInput{
		Bucket:               aws.String(s.bucket),
		Key:                  aws.String(key),
		Body:                 bytes.NewReader(data),
		ContentType:          aws.String(contentType),
		ServerSideEncryption: aws.String("AES256"),
	})
	if err != nil {
		return "", fmt.Errorf("storage: no se pudo subir %s: %w", key, err)
	}
	return key, nil
}

// PresignURL genera una URL temporal de lectura para la llave dada.
func (s *S3Storage) PresignURL(key string, ttl time.Duration) (string, error) {
	req, _ := s.client.GetObjectRequest(&s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	url, err := req.Presign(ttl)
	if err != nil {
		return "", fmt.Errorf("storage: no se pudo pre-firmar %s: %w", key, err)
	}
	return url, nil
}

// Delete elimina el objeto; devuelve nil también si no existía.
func (s *S3Storage) Delete(ctx context.Context, key string) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	_, err := s.client.DeleteObjectWithContext(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("storage: no se pudo eliminar %s: %w", key, err)
	}
	return nil
}
