package service

import (
	"testing"

	"mdla_service/internal/model"
	"mdla_service/internal/util"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSourcingOfferAccepted(t *testing.T) {
	env := newTestEnv(t)
	client := env.actor(t, model.Client)
	transit := env.actor(t, model.Transit)

	budget := decimal.NewFromInt(2500000)
	req, err := env.sourcing.Create(client, SourcingRequestInput{
		Title:    "  Toyota Hilux 2018  ",
		Category: model.CategoryVehicle,
		Budget:   &budget,
	})
	require.NoError(t, err)
	assert.Equal(t, "Toyota Hilux 2018", req.Title)
	assert.Equal(t, model.SourcingPending, req.Status)

	_, err = env.sourcing.Respond(client, req.ID, true)
	assert.ErrorIs(t, err, util.ErrInvalidTransition)

	price := decimal.NewFromInt(2300000)
	offered, err := env.sourcing.SubmitOffer(transit, req.ID, SourcingOfferRequest{Price: &price, Details: "Livraison sous 6 semaines"})
	require.NoError(t, err)
	assert.Equal(t, model.SourcingOffered, offered.Status)
	require.NotNil(t, offered.OfferedBy)
	assert.Equal(t, transit.UserID, *offered.OfferedBy)

	// staff may revise an offer until the customer answers
	revised := decimal.NewFromInt(2200000)
	offered, err = env.sourcing.SubmitOffer(transit, req.ID, SourcingOfferRequest{Price: &revised})
	require.NoError(t, err)
	assert.True(t, offered.OfferPrice.Decimal.Equal(revised))

	accepted, err := env.sourcing.Respond(client, req.ID, true)
	require.NoError(t, err)
	assert.Equal(t, model.SourcingAccepted, accepted.Status)

	_, err = env.sourcing.SubmitOffer(transit, req.ID, SourcingOfferRequest{Price: &price})
	assert.ErrorIs(t, err, util.ErrInvalidTransition)

	closed, err := env.sourcing.Close(transit, req.ID)
	require.NoError(t, err)
	assert.Equal(t, model.SourcingClosed, closed.Status)

	_, err = env.sourcing.Close(transit, req.ID)
	assert.ErrorIs(t, err, util.ErrInvalidTransition)
}

func TestSourcingPermissions(t *testing.T) {
	env := newTestEnv(t)
	alice := env.actor(t, model.Client)
	bob := env.actor(t, model.Client)
	admin := env.actor(t, model.Admin)

	_, err := env.sourcing.Create(Actor{}, SourcingRequestInput{Title: "x"})
	assert.ErrorIs(t, err, util.ErrUnauthorized)

	_, err = env.sourcing.Create(alice, SourcingRequestInput{Title: "x", Category: "boat"})
	assert.ErrorIs(t, err, util.ErrValidation)

	req, err := env.sourcing.Create(alice, SourcingRequestInput{Title: "Groupe électrogène"})
	require.NoError(t, err)
	_, err = env.sourcing.Create(bob, SourcingRequestInput{Title: "Compresseur"})
	require.NoError(t, err)

	price := decimal.NewFromInt(100)
	_, err = env.sourcing.SubmitOffer(alice, req.ID, SourcingOfferRequest{Price: &price})
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	negative := decimal.NewFromInt(-5)
	_, err = env.sourcing.SubmitOffer(admin, req.ID, SourcingOfferRequest{Price: &negative})
	assert.ErrorIs(t, err, util.ErrValidation)

	_, err = env.sourcing.SubmitOffer(admin, req.ID, SourcingOfferRequest{Price: &price})
	require.NoError(t, err)

	_, err = env.sourcing.Respond(bob, req.ID, true)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	declined, err := env.sourcing.Respond(alice, req.ID, false)
	require.NoError(t, err)
	assert.Equal(t, model.SourcingDeclined, declined.Status)

	_, err = env.sourcing.Close(alice, req.ID)
	assert.ErrorIs(t, err, util.ErrPermissionDenied)

	_, total, err := env.sourcing.List(alice, "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	_, total, err = env.sourcing.List(admin, "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)

	_, err = env.sourcing.Close(admin, 9999)
	assert.ErrorIs(t, err, util.ErrSourcingNotFound)
}
