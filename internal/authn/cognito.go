package authn

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"outreach/pkg/types"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	ctypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
	"github.com/sirupsen/logrus"
)

// metadata attribute names in the user pool. Everything beyond the standard
// email/name/phone_number attributes is a custom attribute.
const (
	attrEmail        = "email"
	attrName         = "name"
	attrPhone        = "phone_number"
	attrRole         = "custom:role"
	attrIsActive     = "custom:is_active"
	attrZone         = "custom:zone"
	attrSkills       = "custom:skills"
	attrAvailability = "custom:availability"
	attrVehicle      = "custom:vehicle"
	attrForEvents    = "custom:for_events"
	attrForOutreachs = "custom:for_outreachs"
)

type CognitoProvider struct {
	client     *cognitoidentityprovider.Client
	userPoolID string
	clientID   string
	logger     *logrus.Logger
}

var _ Provider = (*CognitoProvider)(nil)

func NewCognitoProvider(client *cognitoidentityprovider.Client, userPoolID, clientID string, logger *logrus.Logger) *CognitoProvider {
	return &CognitoProvider{
		client:     client,
		userPoolID: userPoolID,
		clientID:   clientID,
		logger:     logger,
	}
}

func (p *CognitoProvider) SignUp(ctx context.Context, input SignUpInput) (string, error) {

	out, err := p.client.SignUp(ctx, &cognitoidentityprovider.SignUpInput{
		ClientId:       aws.String(p.clientID),
		Username:       aws.String(input.Email), // email is the username
		Password:       aws.String(input.Password),
		UserAttributes: metadataToAttributes(input.Email, input.Metadata),
	})
	if err != nil {
		var userExists *ctypes.UsernameExistsException
		if errors.As(err, &userExists) {
			return "", ErrAccountExists
		}
		var invalidPw *ctypes.InvalidPasswordException
		if errors.As(err, &invalidPw) {
			return "", ErrWeakPassword
		}
		return "", fmt.Errorf("cognito signup: %w", err)
	}

	return aws.ToString(out.UserSub), nil
}

func (p *CognitoProvider) SignIn(ctx context.Context, email, password string) (*Tokens, error) {

	resp, err := p.client.InitiateAuth(ctx, &cognitoidentityprovider.InitiateAuthInput{
		AuthFlow: ctypes.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(p.clientID),
		AuthParameters: map[string]string{
			"USERNAME": email,
			"PASSWORD": password,
		},
	})
	if err != nil {
		// NotAuthorizedException, UserNotConfirmedException, etc.
		p.logger.WithError(err).Info("sign in rejected")
		return nil, ErrInvalidCredentials
	}

	if resp.AuthenticationResult == nil || resp.AuthenticationResult.IdToken == nil {
		return nil, ErrInvalidCredentials
	}

	return &Tokens{
		IDToken:      aws.ToString(resp.AuthenticationResult.IdToken),
		RefreshToken: aws.ToString(resp.AuthenticationResult.RefreshToken),
		ExpiresIn:    int(resp.AuthenticationResult.ExpiresIn),
	}, nil
}

func (p *CognitoProvider) SignOut(ctx context.Context, email string) error {
	_, err := p.client.AdminUserGlobalSignOut(ctx, &cognitoidentityprovider.AdminUserGlobalSignOutInput{
		UserPoolId: aws.String(p.userPoolID),
		Username:   aws.String(email),
	})
	if err != nil {
		return fmt.Errorf("cognito sign out: %w", err)
	}
	return nil
}

func (p *CognitoProvider) ListAccounts(ctx context.Context) ([]*types.Account, error) {

	var accounts []*types.Account
	var paginationToken *string

	for {
		out, err := p.client.ListUsers(ctx, &cognitoidentityprovider.ListUsersInput{
			UserPoolId:      aws.String(p.userPoolID),
			PaginationToken: paginationToken,
		})
		if err != nil {
			return nil, fmt.Errorf("cognito list users: %w", err)
		}

		for _, user := range out.Users {
			accounts = append(accounts, accountFromUserType(user))
		}

		if out.PaginationToken == nil {
			break
		}
		paginationToken = out.PaginationToken
	}

	return accounts, nil
}

func (p *CognitoProvider) UpdateAccountMetadata(ctx context.Context, email string, metadata types.AccountMetadata) error {
	_, err := p.client.AdminUpdateUserAttributes(ctx, &cognitoidentityprovider.AdminUpdateUserAttributesInput{
		UserPoolId:     aws.String(p.userPoolID),
		Username:       aws.String(email),
		UserAttributes: metadataToAttributes(email, metadata),
	})
	if err != nil {
		var notFound *ctypes.UserNotFoundException
		if errors.As(err, &notFound) {
			return types.ErrAccountNotFound
		}
		return fmt.Errorf("cognito update attributes: %w", err)
	}
	return nil
}

func (p *CognitoProvider) DeleteAccount(ctx context.Context, email string) error {
	_, err := p.client.AdminDeleteUser(ctx, &cognitoidentityprovider.AdminDeleteUserInput{
		UserPoolId: aws.String(p.userPoolID),
		Username:   aws.String(email),
	})
	if err != nil {
		var notFound *ctypes.UserNotFoundException
		if errors.As(err, &notFound) {
			return types.ErrAccountNotFound
		}
		return fmt.Errorf("cognito delete user: %w", err)
	}
	return nil
}

func metadataToAttributes(email string, metadata types.AccountMetadata) []ctypes.AttributeType {

	attrs := []ctypes.AttributeType{
		{Name: aws.String(attrEmail), Value: aws.String(email)},
		{Name: aws.String(attrRole), Value: aws.String(string(metadata.Role))},
		{Name: aws.String(attrIsActive), Value: aws.String(strconv.FormatBool(metadata.IsActive))},
	}

	optional := []struct {
		name, value string
	}{
		{attrName, metadata.FullName},
		{attrPhone, metadata.Phone},
		{attrZone, metadata.Zone},
		{attrSkills, metadata.Skills},
		{attrAvailability, metadata.Availability},
		{attrVehicle, metadata.Vehicle},
	}
	for _, attr := range optional {
		if attr.value != "" {
			attrs = append(attrs, ctypes.AttributeType{
				Name:  aws.String(attr.name),
				Value: aws.String(attr.value),
			})
		}
	}

	if metadata.Role == types.RoleDonor {
		attrs = append(attrs,
			ctypes.AttributeType{Name: aws.String(attrForEvents), Value: aws.String(strconv.FormatBool(metadata.ForEvents))},
			ctypes.AttributeType{Name: aws.String(attrForOutreachs), Value: aws.String(strconv.FormatBool(metadata.ForOutreachs))},
		)
	}

	return attrs
}

func accountFromUserType(user ctypes.UserType) *types.Account {

	account := &types.Account{
		ID: aws.ToString(user.Username),
	}
	if user.UserCreateDate != nil {
		account.CreatedAt = *user.UserCreateDate
	}

	for _, attr := range user.Attributes {
		value := aws.ToString(attr.Value)

		switch aws.ToString(attr.Name) {
		case "sub":
			account.ID = value
		case attrEmail:
			account.Email = value
		case attrName:
			account.Metadata.FullName = value
		case attrPhone:
			account.Phone = value
			account.Metadata.Phone = value
		case attrRole:
			account.Metadata.Role = types.Role(value)
		case attrIsActive:
			account.Metadata.IsActive, _ = strconv.ParseBool(value)
		case attrZone:
			account.Metadata.Zone = value
		case attrSkills:
			account.Metadata.Skills = value
		case attrAvailability:
			account.Metadata.Availability = value
		case attrVehicle:
			account.Metadata.Vehicle = value
		case attrForEvents:
			account.Metadata.ForEvents, _ = strconv.ParseBool(value)
		case attrForOutreachs:
			account.Metadata.ForOutreachs, _ = strconv.ParseBool(value)
		}
	}

	return account
}
