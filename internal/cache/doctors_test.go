package cache

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/doctors-portal-api/internal/models"
)

type fakeDoctors struct {
	doctors   []models.Doctor
	listCalls int
	listErr   error
}

func (f *fakeDoctors) Insert(_ context.Context, d models.Doctor) (primitive.ObjectID, error) {
	d.ID = primitive.NewObjectID()
	f.doctors = append(f.doctors, d)
	return d.ID, nil
}

func (f *fakeDoctors) List(context.Context) ([]models.Doctor, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]models.Doctor(nil), f.doctors...), nil
}

func setup(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCachedDoctorsListHitsStoreOnce(t *testing.T) {
	mr, client := setup(t)
	repo := &fakeDoctors{doctors: []models.Doctor{{ID: primitive.NewObjectID(), Name: "Dr. A", Image: []byte{0x89, 0x50}}}}
	c := NewCachedDoctors(repo, client, time.Minute, discard())
	ctx := context.Background()

	first, err := c.List(ctx)
	require.NoError(t, err)
	second, err := c.List(ctx)
	require.NoError(t, err)

	assert.Equal(t, 1, repo.listCalls)
	assert.Equal(t, first, second)
	assert.True(t, mr.Exists(doctorsKey))
	assert.Equal(t, time.Minute, mr.TTL(doctorsKey))
}

func TestCachedDoctorsInsertInvalidates(t *testing.T) {
	mr, client := setup(t)
	repo := &fakeDoctors{}
	c := NewCachedDoctors(repo, client, time.Minute, discard())
	ctx := context.Background()

	_, err := c.List(ctx)
	require.NoError(t, err)
	require.True(t, mr.Exists(doctorsKey))

	_, err = c.Insert(ctx, models.Doctor{Name: "Dr. B"})
	require.NoError(t, err)
	assert.False(t, mr.Exists(doctorsKey))

	got, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Dr. B", got[0].Name)
	assert.Equal(t, 2, repo.listCalls)
}

func TestCachedDoctorsExpires(t *testing.T) {
	mr, client := setup(t)
	repo := &fakeDoctors{}
	c := NewCachedDoctors(repo, client, time.Second, discard())
	ctx := context.Background()

	_, err := c.List(ctx)
	require.NoError(t, err)
	mr.FastForward(2 * time.Second)
	_, err = c.List(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, repo.listCalls)
}

func TestCachedDoctorsFallsThroughWhenRedisDown(t *testing.T) {
	mr, client := setup(t)
	repo := &fakeDoctors{doctors: []models.Doctor{{Name: "Dr. C"}}}
	c := NewCachedDoctors(repo, client, time.Minute, discard())
	mr.Close()

	got, err := c.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestCachedDoctorsStoreError(t *testing.T) {
	_, client := setup(t)
	boom := errors.New("boom")
	c := NewCachedDoctors(&fakeDoctors{listErr: boom}, client, time.Minute, discard())

	_, err := c.List(context.Background())
	require.ErrorIs(t, err, boom)
}

func TestNewRedisClient(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedisClient(context.Background(), mr.Addr())
	require.NoError(t, err)
	_ = client.Close()

	mr.Close()
	_, err = NewRedisClient(context.Background(), mr.Addr())
	require.Error(t, err)
}
