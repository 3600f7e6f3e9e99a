package usecase

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mikiasgoitom/Snapfeed/internal/domain/apperror"
	"github.com/mikiasgoitom/Snapfeed/internal/domain/contract"
	"github.com/mikiasgoitom/Snapfeed/internal/domain/entity"
	"github.com/mikiasgoitom/Snapfeed/internal/domain/mediaref"
	usecasecontract "github.com/mikiasgoitom/Snapfeed/internal/usecase/contract"
	"golang.org/x/sync/errgroup"
)

// localSubjectPrefix namespaces the subject of users registered locally so
// they never collide with identity provider subjects.
const localSubjectPrefix = "local:"

// UserUsecase implements the IUserUseCase interface.
type UserUsecase struct {
	userRepo   contract.IUserRepository
	postRepo   contract.IPostRepository
	mediaRepo  contract.IMediaRepository
	hasher     contract.IHasher
	jwtService JWTService
	identity   contract.IIdentityVerifier
	logger     usecasecontract.IAppLogger
	config     usecasecontract.IConfigProvider
	validator  usecasecontract.IValidator
	idGen      contract.IObjectIDGenerator
}

// NewUserUsecase creates a new UserUsecase instance. identity and jwtService
// may be nil, disabling the matching kind of bearer credential.
func NewUserUsecase(
	userRepo contract.IUserRepository,
	postRepo contract.IPostRepository,
	mediaRepo contract.IMediaRepository,
	hasher contract.IHasher,
	jwtService JWTService,
	identity contract.IIdentityVerifier,
	logger usecasecontract.IAppLogger,
	cfg usecasecontract.IConfigProvider,
	validator usecasecontract.IValidator,
	idGen contract.IObjectIDGenerator,
) *UserUsecase {
	return &UserUsecase{
		userRepo:   userRepo,
		postRepo:   postRepo,
		mediaRepo:  mediaRepo,
		hasher:     hasher,
		jwtService: jwtService,
		identity:   identity,
		logger:     logger,
		config:     cfg,
		validator:  validator,
		idGen:      idGen,
	}
}

// check if UserUsecase implements the IUserUseCase
var _ usecasecontract.IUserUseCase = (*UserUsecase)(nil)

// Register creates a local account and returns an access token for it.
func (uc *UserUsecase) Register(ctx context.Context, name, email, password string) (*entity.User, string, error) {
	if uc.jwtService == nil {
		return nil, "", apperror.Validation(apperror.CodeAuthInvalidInput, "local accounts are disabled")
	}
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		return nil, "", apperror.Validation(apperror.CodeAuthInvalidInput, "name is required")
	}
	if err := uc.validator.ValidateEmail(email); err != nil {
		return nil, "", apperror.Wrap(apperror.KindValidation, apperror.CodeAuthInvalidInput, "invalid email format", err)
	}
	if err := uc.validator.ValidatePasswordStrength(password); err != nil {
		return nil, "", apperror.Wrap(apperror.KindValidation, apperror.CodeAuthInvalidInput, "weak password: "+err.Error(), err)
	}

	existing, err := uc.userRepo.GetLocalUserByEmail(ctx, email)
	if err != nil && !errors.Is(err, contract.ErrUserNotFound) {
		uc.logger.Errorf("failed to check for existing user by email: %v", err)
		return nil, "", apperror.Internal(apperror.CodeAuthServerError, err)
	}
	if existing != nil {
		return nil, "", apperror.Conflict(apperror.CodeAuthEmailTaken, "email is already in use")
	}

	hashed, err := uc.hasher.HashPassword(password)
	if err != nil {
		uc.logger.Errorf("failed to hash password: %v", err)
		return nil, "", apperror.Internal(apperror.CodeAuthServerError, err)
	}

	now := time.Now().UTC()
	id := uc.idGen.NewObjectID()
	user := &entity.User{
		ID:           id,
		Subject:      localSubjectPrefix + id,
		Name:         name,
		Email:        email,
		PasswordHash: hashed,
		Photos:       []string{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := uc.userRepo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, contract.ErrDuplicateEmail) {
			return nil, "", apperror.Conflict(apperror.CodeAuthEmailTaken, "email is already in use")
		}
		uc.logger.Errorf("failed to create user: %v", err)
		return nil, "", apperror.Internal(apperror.CodeAuthServerError, err)
	}

	token, err := uc.jwtService.GenerateAccessToken(user.ID)
	if err != nil {
		uc.logger.Errorf("failed to issue access token: %v", err)
		return nil, "", apperror.Internal(apperror.CodeAuthServerError, err)
	}
	return user, token, nil
}

// Login checks a local password and returns an access token.
func (uc *UserUsecase) Login(ctx context.Context, email, password string) (*entity.User, string, error) {
	invalid := apperror.Unauthorized(apperror.CodeAuthInvalidCredentials, "invalid email or password")
	if uc.jwtService == nil {
		return nil, "", invalid
	}
	user, err := uc.userRepo.GetLocalUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, contract.ErrUserNotFound) {
			return nil, "", invalid
		}
		uc.logger.Errorf("failed to load user for login: %v", err)
		return nil, "", apperror.Internal(apperror.CodeAuthServerError, err)
	}
	if user.PasswordHash == "" {
		return nil, "", invalid
	}
	if err := uc.hasher.ComparePasswordHash(password, user.PasswordHash); err != nil {
		return nil, "", invalid
	}

	token, err := uc.jwtService.GenerateAccessToken(user.ID)
	if err != nil {
		uc.logger.Errorf("failed to issue access token: %v", err)
		return nil, "", apperror.Internal(apperror.CodeAuthServerError, err)
	}
	return user, token, nil
}

// Authenticate resolves a bearer credential to a user. Identity provider
// tokens are tried first and provision the user on first sight; legacy local
// tokens are the fallback.
func (uc *UserUsecase) Authenticate(ctx context.Context, bearerToken string) (*entity.User, error) {
	invalid := apperror.Unauthorized(apperror.CodeAuthInvalidToken, "invalid or expired token")

	if uc.identity != nil {
		identity, err := uc.identity.VerifyIdentityToken(ctx, bearerToken)
		if err == nil {
			return uc.provision(ctx, identity)
		}
		uc.logger.Debugf("identity token rejected: %v", err)
	}

	if uc.jwtService == nil {
		return nil, invalid
	}
	claims, err := uc.jwtService.ParseAccessToken(bearerToken)
	if err != nil {
		return nil, invalid
	}
	user, err := uc.userRepo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, contract.ErrUserNotFound) {
			return nil, invalid
		}
		uc.logger.Errorf("failed to load user %s: %v", claims.UserID, err)
		return nil, apperror.Internal(apperror.CodeAuthServerError, err)
	}
	return user, nil
}

func (uc *UserUsecase) provision(ctx context.Context, identity *entity.Identity) (*entity.User, error) {
	if identity.Name == "" {
		identity.Name = displayNameFromEmail(identity.Email)
	}
	identity.Email = strings.ToLower(identity.Email)
	user, err := uc.userRepo.FindOrCreateBySubject(ctx, *identity, uc.idGen.NewObjectID())
	if err != nil {
		uc.logger.Errorf("failed to provision user for subject %s: %v", identity.Subject, err)
		return nil, apperror.Internal(apperror.CodeAuthServerError, err)
	}
	return user, nil
}

func displayNameFromEmail(email string) string {
	if local, _, ok := strings.Cut(email, "@"); ok && local != "" {
		return local
	}
	return "user"
}

// GetUserByID returns a single user.
func (uc *UserUsecase) GetUserByID(ctx context.Context, userID string) (*entity.User, error) {
	if !entity.ValidObjectID(userID) {
		return nil, apperror.Validation(apperror.CodeUserInvalidID, "invalid user id")
	}
	user, err := uc.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, contract.ErrUserNotFound) {
			return nil, apperror.NotFound(apperror.CodeUserNotFound, "user", userID)
		}
		uc.logger.Errorf("failed to load user %s: %v", userID, err)
		return nil, apperror.Internal(apperror.CodeUserServerError, err)
	}
	return user, nil
}

// GetProfile loads a user and their posts concurrently.
func (uc *UserUsecase) GetProfile(ctx context.Context, userID string) (*usecasecontract.Profile, error) {
	if !entity.ValidObjectID(userID) {
		return nil, apperror.Validation(apperror.CodeUserInvalidID, "invalid user id")
	}

	var (
		user  *entity.User
		posts []*entity.Post
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		user, err = uc.userRepo.GetUserByID(gctx, userID)
		return err
	})
	g.Go(func() error {
		var err error
		posts, err = uc.postRepo.ListPostsByOwner(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, contract.ErrUserNotFound) {
			return nil, apperror.NotFound(apperror.CodeUserNotFound, "user", userID)
		}
		uc.logger.Errorf("failed to load profile %s: %v", userID, err)
		return nil, apperror.Internal(apperror.CodeUserServerError, err)
	}
	return &usecasecontract.Profile{User: user, Posts: posts}, nil
}

// SearchUsers matches names case-insensitively.
func (uc *UserUsecase) SearchUsers(ctx context.Context, query string) ([]*entity.User, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, apperror.Validation(apperror.CodeSearchInvalidQuery, "query is required")
	}
	users, err := uc.userRepo.SearchUsersByName(ctx, query, uc.config.GetSearchResultLimit())
	if err != nil {
		uc.logger.Errorf("failed to search users: %v", err)
		return nil, apperror.Internal(apperror.CodeUserServerError, err)
	}
	return users, nil
}

// UpdateProfile changes the caller's name, bio or profile photo. The photo is
// given as a media reference and must be one of the caller's profile images.
func (uc *UserUsecase) UpdateProfile(ctx context.Context, userID string, update usecasecontract.ProfileUpdate) (*entity.User, error) {
	if update.Name != nil {
		trimmed := strings.TrimSpace(*update.Name)
		if trimmed == "" {
			return nil, apperror.Validation(apperror.CodeUserInvalidInput, "name cannot be empty")
		}
		update.Name = &trimmed
	}
	if update.Bio != nil && utf8.RuneCountInString(*update.Bio) > entity.MaxDescriptionLength {
		return nil, apperror.Validation(apperror.CodeUserInvalidInput, "bio must be at most 500 characters")
	}

	current, err := uc.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	var photos []string
	if update.PhotoRef != nil {
		ref := mediaref.Decode(strings.TrimSpace(*update.PhotoRef))
		if !ref.IsResolved() {
			return nil, apperror.Validation(apperror.CodeUserInvalidPhoto, "photo does not reference a media record")
		}
		media, err := uc.mediaRepo.GetMediaMetaByID(ctx, ref.ID())
		if err != nil {
			if errors.Is(err, contract.ErrMediaNotFound) {
				return nil, apperror.Validation(apperror.CodeUserInvalidPhoto, "photo does not reference a media record")
			}
			uc.logger.Errorf("failed to load media %s: %v", ref.ID(), err)
			return nil, apperror.Internal(apperror.CodeUserServerError, err)
		}
		if media.OwnerID != userID || media.Category != entity.MediaCategoryProfile {
			return nil, apperror.Validation(apperror.CodeUserInvalidPhoto, "photo must be one of your profile images")
		}
		photos = append([]string{media.ID}, slices.DeleteFunc(slices.Clone(current.Photos), func(p string) bool {
			return p == media.ID
		})...)
	}

	user, err := uc.userRepo.UpdateProfile(ctx, userID, update.Name, update.Bio, photos)
	if err != nil {
		if errors.Is(err, contract.ErrUserNotFound) {
			return nil, apperror.NotFound(apperror.CodeUserNotFound, "user", userID)
		}
		uc.logger.Errorf("failed to update user %s: %v", userID, err)
		return nil, apperror.Internal(apperror.CodeUserServerError, err)
	}
	return user, nil
}
