package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tidalpower/fitness-studio/internal/domain"
)

func TestCreateTemplate(t *testing.T) {
	ctx := context.Background()
	users := newFakeUserRepo()
	trainer := users.add(domain.RoleTrainer, nil)
	client := users.add(domain.RoleClient, &trainer.UserID)

	exercises := newFakeExerciseRepo()
	squat := &domain.Exercise{TrainerID: trainer.UserID, Name: "Back Squat"}
	_, err := exercises.Create(ctx, squat)
	require.NoError(t, err)

	svc := NewTemplateService(newFakeTemplateRepo(), exercises)

	tpl, err := svc.CreateTemplate(ctx, trainer, "", "", []domain.TemplateExercise{
		{ExerciseID: squat.ID, Sets: 5, Reps: 5, WeightLbs: 225},
		{ExerciseID: squat.ID, Name: "Paused Squat", Sets: 2, Reps: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultTemplateName, tpl.Name)
	assert.Equal(t, "Back Squat", tpl.Exercises[0].Name)
	assert.Equal(t, "Paused Squat", tpl.Exercises[1].Name)

	got, err := svc.GetTemplate(ctx, tpl.ID)
	require.NoError(t, err)
	assert.Len(t, got.Exercises, 2)

	_, err = svc.CreateTemplate(ctx, trainer, "Empty", "", nil)
	assert.ErrorIs(t, err, ErrValidationFailed)
	_, err = svc.CreateTemplate(ctx, trainer, "No sets", "", []domain.TemplateExercise{{ExerciseID: squat.ID}})
	assert.ErrorIs(t, err, ErrValidationFailed)
	_, err = svc.CreateTemplate(ctx, trainer, "Negative", "", []domain.TemplateExercise{{ExerciseID: squat.ID, Sets: 1, Reps: -2}})
	assert.ErrorIs(t, err, ErrValidationFailed)
	_, err = svc.CreateTemplate(ctx, trainer, "Ghost", "", []domain.TemplateExercise{{ExerciseID: primitive.NewObjectID(), Sets: 1}})
	assert.ErrorIs(t, err, ErrExerciseNotFound)
	_, err = svc.CreateTemplate(ctx, client, "Mine", "", []domain.TemplateExercise{{ExerciseID: squat.ID, Sets: 1}})
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.GetTemplate(ctx, primitive.NewObjectID())
	assert.ErrorIs(t, err, ErrTemplateNotFound)

	list, err := svc.ListTemplates(ctx, trainer.UserID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
