package implementation

import (
	"context"

	"genai-chatbot-be/internal/entity"
	"genai-chatbot-be/internal/mapper"
	"genai-chatbot-be/internal/model"
	"genai-chatbot-be/internal/repository/contract"
	"genai-chatbot-be/internal/repository/specification"

	"gorm.io/gorm"
)

type GenerationLogRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ChatMapper
}

func NewGenerationLogRepository(db *gorm.DB) contract.GenerationLogRepository {
	return &GenerationLogRepositoryImpl{
		db:     db,
		mapper: mapper.NewChatMapper(),
	}
}

func (r *GenerationLogRepositoryImpl) Create(ctx context.Context, log *entity.GenerationLog) error {
	m, err := r.mapper.GenerationLogToModel(log)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *GenerationLogRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.GenerationLog, error) {
	var models []*model.GenerationLog
	query := r.db.WithContext(ctx)
	for _, spec := range specs {
		query = spec.Apply(query)
	}
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	entities := make([]*entity.GenerationLog, len(models))
	for i, m := range models {
		entities[i] = r.mapper.GenerationLogToEntity(m)
	}
	return entities, nil
}
