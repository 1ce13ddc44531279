package service

import (
	"backend/internal/apperror"
	"backend/internal/model"
	"backend/internal/repository"
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// FlexID accepts a numeric id sent either as a JSON number or as a quoted
// string; clients are inconsistent about which they send.
type FlexID uint64

func (f *FlexID) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return err
	}
	*f = FlexID(v)
	return nil
}

type StorePolynomialRequest struct {
	SimplifiedExpression string   `json:"simplifiedExpression"`
	FactoredExpression   string   `json:"factoredExpression"`
	Roots                []string `json:"roots"`
	UserID               *FlexID  `json:"userId"`
}

// PolynomialStats aggregates the stored results. Root values are averaged
// with exact decimals; roots that do not parse as plain numbers (complex
// roots, symbolic forms) are skipped.
type PolynomialStats struct {
	TotalPolynomials int64  `json:"total_polynomials"`
	DistinctUsers    int64  `json:"distinct_users"`
	TotalRoots       int64  `json:"total_roots"`
	MeanRootValue    string `json:"mean_root_value"`
}

// PolynomialService persists computed polynomial results with duplicate
// suppression and serves the listings.
type PolynomialService interface {
	Store(ctx context.Context, req StorePolynomialRequest) error
	GetByID(ctx context.Context, id uint64) (*model.Polynomial, error)
	List(ctx context.Context) ([]model.Polynomial, error)
	ListByUser(ctx context.Context, userID uint64) ([]model.PolynomialDTO, error)
	Stats(ctx context.Context) (*PolynomialStats, error)
}

type polynomialService struct {
	polys repository.PolynomialRepository
	users repository.AccountRepository
	log   *logrus.Logger
}

// NewPolynomialService returns a new instance of PolynomialService. The
// user repository is consulted to validate polynomial ownership.
func NewPolynomialService(polys repository.PolynomialRepository, users repository.AccountRepository, log *logrus.Logger) PolynomialService {
	return &polynomialService{polys: polys, users: users, log: log}
}

// Store persists the polynomial unless an identical one already exists for
// the same user. Suppression is silent: the caller gets the same success
// either way.
func (s *polynomialService) Store(ctx context.Context, req StorePolynomialRequest) error {
	if req.UserID == nil {
		return apperror.BadRequest("User ID is required.")
	}
	userID := uint64(*req.UserID)

	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return apperror.NotFound("User not found.")
	}

	p := &model.Polynomial{
		SimplifiedExpression: req.SimplifiedExpression,
		FactoredExpression:   req.FactoredExpression,
		Roots:                model.RootList(req.Roots),
		UserID:               userID,
	}

	inserted, err := s.polys.SaveIfAbsent(ctx, p)
	if err != nil {
		s.log.WithError(err).Error("polynomial save failed")
		return apperror.Internal("Error: " + err.Error())
	}
	if !inserted {
		s.log.WithFields(logrus.Fields{
			"user_id":    userID,
			"simplified": req.SimplifiedExpression,
		}).Info("duplicate polynomial suppressed")
	}
	return nil
}

func (s *polynomialService) GetByID(ctx context.Context, id uint64) (*model.Polynomial, error) {
	p, err := s.polys.GetByID(ctx, id)
	if err != nil {
		return nil, apperror.NotFound("Polynomial not found.")
	}
	return p, nil
}

func (s *polynomialService) List(ctx context.Context) ([]model.Polynomial, error) {
	polys, err := s.polys.List(ctx)
	if err != nil {
		return nil, apperror.Internal("Error: " + err.Error())
	}
	return polys, nil
}

// ListByUser returns the flattened listing for one user; the owner must
// exist.
func (s *polynomialService) ListByUser(ctx context.Context, userID uint64) ([]model.PolynomialDTO, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, apperror.NotFound("User not found.")
	}

	polys, err := s.polys.ListByUserID(ctx, userID)
	if err != nil {
		return nil, apperror.Internal("Error: " + err.Error())
	}

	dtos := make([]model.PolynomialDTO, 0, len(polys))
	for i := range polys {
		dtos = append(dtos, model.NewPolynomialDTO(&polys[i]))
	}
	return dtos, nil
}

func (s *polynomialService) Stats(ctx context.Context) (*PolynomialStats, error) {
	polys, err := s.polys.List(ctx)
	if err != nil {
		return nil, apperror.Internal("Error: " + err.Error())
	}

	stats := &PolynomialStats{TotalPolynomials: int64(len(polys))}

	users := make(map[uint64]struct{})
	sum := decimal.Zero
	var numericRoots int64
	for i := range polys {
		users[polys[i].UserID] = struct{}{}
		stats.TotalRoots += int64(len(polys[i].Roots))
		for _, r := range polys[i].Roots {
			d, err := decimal.NewFromString(r)
			if err != nil {
				continue
			}
			sum = sum.Add(d)
			numericRoots++
		}
	}
	stats.DistinctUsers = int64(len(users))

	if numericRoots > 0 {
		stats.MeanRootValue = sum.Div(decimal.NewFromInt(numericRoots)).Round(6).String()
	} else {
		stats.MeanRootValue = decimal.Zero.String()
	}
	return stats, nil
}

// ensure FlexID keeps satisfying json.Unmarshaler
var _ json.Unmarshaler = (*FlexID)(nil)
