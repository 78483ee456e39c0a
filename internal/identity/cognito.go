package identity

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cognitoidentityprovider"
)

// GroupDirectory abstrae el directorio de grupos del proveedor de
// identidad. El rol de trabajador es un grupo del user pool, no una
// columna local.
type GroupDirectory interface {
	ListGroups(ctx context.Context, username string) ([]string, error)
	AddToGroup(ctx context.Context, username, group string) error
	RemoveFromGroup(ctx context.Context, username, group string) error
}

// CognitoDirectory implementa GroupDirectory contra AWS Cognito.
type CognitoDirectory struct {
	client     *cognitoidentityprovider.CognitoIdentityProvider
	userPoolID string
	timeout    time.Duration
}

// NewCognitoDirectory crea el cliente del user pool dado.
func NewCognitoDirectory(region, userPoolID string, timeout time.Duration) (*CognitoDirectory, error) {
	sess, err := session.NewSession(&aws.Config{Region: aws.String(region)})
	if err != nil {
		return nil, fmt.Errorf("identity: no se pudo crear la sesión de Cognito: %w", err)
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &CognitoDirectory{
		client:     cognitoidentityprovider.New(sess),
		userPoolID: userPoolID,
		timeout:    timeout,
	}, nil
}

// ListGroups devuelve los nombres de los grupos a los que pertenece el
// usuario.
func (d *CognitoDirectory) ListGroups(ctx context.Context, username string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	var groups []string
	input := &cognitoidentityprovider.AdminListGroupsForUserInput{
		UserPoolId: aws.String(d.userPoolID),
		Username:   aws.String(username),
	}
	err := d.client.AdminListGroupsForUserPagesWithContext(ctx, input,
		func(page *cognitoidentityprovider.AdminListGroupsForUserOutput, _ bool) bool {
			for _, g := range page.Groups {
				if g.GroupName != nil {
					groups = append(groups, *g.GroupName)
				}
			}
			return true
		})
	if err != nil {
		return nil, fmt.Errorf("identity: no se pudieron listar los grupos de %s: %w", username, err)
	}
	return groups, nil
}

// AddToGroup agrega al usuario al grupo indicado.
func (d *CognitoDirectory) AddToGroup(ctx context.Context, username, group string) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	_, err := d.client.AdminAddUserToGroupWithContext(ctx, &cognitoidentityprovider.AdminAddUserToGroupInput{
		UserPoolId: aws.String(d.userPoolID),
		Username:   aws.String(username),
		GroupName:  aws.String(group),
	})
	if err != nil {
		return fmt.Errorf("identity: no se pudo agregar a %s al grupo %s: %w", username, group, err)
	}
	return nil
}

// RemoveFromGroup quita al usuario del grupo indicado.
func (d *CognitoDirectory) RemoveFromGroup(ctx context.Context, username, group string) error {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	_, err := d.client.AdminRemoveUserFromGroupWithContext(ctx, &cognitoidentityprovider.AdminRemoveUserFromGroupInput{
		UserPoolId: aws.String(d.userPoolID),
		Username:   aws.String(username),
		GroupName:  aws.String(group),
	})
	if err != nil {
		return fmt.Errorf("identity: no se pudo quitar a %s del grupo %s: %w", username, group, err)
	}
	return nil
}
