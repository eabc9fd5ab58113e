package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestExerciseCRUD(t *testing.T) {
	ctx := context.Background()
	svc := NewExerciseService(newFakeExerciseRepo(), nil)
	owner, intruder := primitive.NewObjectID(), primitive.NewObjectID()

	_, err := svc.CreateExercise(ctx, owner, ExerciseInput{Name: "   "})
	assert.ErrorIs(t, err, ErrValidationFailed)

	ex, err := svc.CreateExercise(ctx, owner, ExerciseInput{Name: " Deadlift ", MuscleGroup: "Back"})
	require.NoError(t, err)
	assert.Equal(t, "Deadlift", ex.Name)

	_, err = svc.UpdateExercise(ctx, intruder, ex.ID, ExerciseInput{Name: "Mine now"})
	assert.ErrorIs(t, err, ErrExerciseAccessDenied)

	updated, err := svc.UpdateExercise(ctx, owner, ex.ID, ExerciseInput{Name: "Romanian Deadlift", Equipment: "Barbell"})
	require.NoError(t, err)
	assert.Equal(t, "Barbell", updated.Equipment)

	list, err := svc.GetExercisesByTrainer(ctx, owner)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.RequestVideoUpload(ctx, owner, ex.ID, "video/mp4")
	assert.ErrorIs(t, err, ErrStorageDisabled)

	require.NoError(t, svc.DeleteExercise(ctx, owner, ex.ID))
	_, err = svc.GetExerciseByID(ctx, ex.ID)
	assert.ErrorIs(t, err, ErrExerciseNotFound)
}

func TestExerciseVideoFlow(t *testing.T) {
	ctx := context.Background()
	store := &fakeStorage{}
	svc := NewExerciseService(newFakeExerciseRepo(), store)
	owner := primitive.NewObjectID()

	ex, err := svc.CreateExercise(ctx, owner, ExerciseInput{Name: "Kettlebell Swing"})
	require.NoError(t, err)

	_, err = svc.GetVideoURL(ctx, ex.ID)
	assert.ErrorIs(t, err, ErrNoVideo)

	_, err = svc.RequestVideoUpload(ctx, owner, ex.ID, "image/png")
	assert.ErrorIs(t, err, ErrUnsupportedMedia)

	first, err := svc.RequestVideoUpload(ctx, owner, ex.ID, "video/mp4")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first.ObjectKey, "exercises/"+ex.ID.Hex()+"/"))
	assert.True(t, strings.HasSuffix(first.ObjectKey, ".mp4"))
	assert.Contains(t, first.UploadURL, first.ObjectKey)

	_, err = svc.ConfirmVideoUpload(ctx, owner, ex.ID, "exercises/"+primitive.NewObjectID().Hex()+"/x.mp4")
	assert.ErrorIs(t, err, ErrValidationFailed)

	_, err = svc.ConfirmVideoUpload(ctx, owner, ex.ID, first.ObjectKey)
	require.NoError(t, err)
	url, err := svc.GetVideoURL(ctx, ex.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://s3.test/get/"+first.ObjectKey, url)

	second, err := svc.RequestVideoUpload(ctx, owner, ex.ID, "video/webm")
	require.NoError(t, err)
	_, err = svc.ConfirmVideoUpload(ctx, owner, ex.ID, second.ObjectKey)
	require.NoError(t, err)
	assert.Equal(t, []string{first.ObjectKey}, store.deleted)

	require.NoError(t, svc.DeleteExercise(ctx, owner, ex.ID))
	assert.Equal(t, []string{first.ObjectKey, second.ObjectKey}, store.deleted)
}
