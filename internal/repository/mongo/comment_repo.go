package mongo

import (
	"context"

	"github.com/OneVth/prj-board/internal/model"
	"github.com/OneVth/prj-board/internal/projection"
	"github.com/OneVth/prj-board/internal/util"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// commentRepository 实现了 CommentRepository 接口
type commentRepository struct {
	coll *mongo.Collection
}

// NewCommentRepository 创建一个新的 commentRepository 实例
func NewCommentRepository(db *mongo.Database) *commentRepository {
	return &commentRepository{coll: db.Collection("comments")}
}

// Create 创建一条新评论
func (r *commentRepository) Create(ctx context.Context, comment *model.Comment) error {
	result, err := r.coll.InsertOne(ctx, comment)
	if err != nil {
		util.Logger.Error("创建评论失败", zap.Error(err))
		return err
	}
	comment.ID = result.InsertedID.(primitive.ObjectID)
	util.Logger.Info("评论创建成功",
		zap.String("comment_id", comment.ID.Hex()),
		zap.String("post_id", comment.PostID.Hex()))
	return nil
}

// FindByID 通过ID查找评论
func (r *commentRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Comment, error) {
	var comment model.Comment
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&comment)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &comment, nil
}

// Delete 删除评论
func (r *commentRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		util.Logger.Error("删除评论失败", zap.Error(err), zap.String("comment_id", id.Hex()))
		return err
	}
	util.Logger.Info("评论删除成功", zap.String("comment_id", id.Hex()))
	return nil
}

// CountByPost 统计帖子的评论数
func (r *commentRepository) CountByPost(ctx context.Context, postID primitive.ObjectID) (int64, error) {
	return r.coll.CountDocuments(ctx, bson.M{"post_id": postID})
}

// ListByPostEnriched 返回某帖子的全部评论（时间升序），作者名通过一次聚合连接得出
func (r *commentRepository) ListByPostEnriched(ctx context.Context, postID primitive.ObjectID, viewerID string) ([]*projection.CommentView, error) {
	pipeline := []bson.M{
		{"$match": bson.M{"post_id": postID}},
		{"$addFields": bson.M{
			"author_object_id": bson.M{
				"$cond": bson.M{
					"if":   bson.M{"$gt": []interface{}{bson.M{"$strLenCP": bson.M{"$ifNull": []interface{}{"$author_id", ""}}}, 0}},
					"then": bson.M{"$toObjectId": "$author_id"},
					"else": nil,
				},
			},
		}},
		{"$lookup": bson.M{
			"from":         "users",
			"localField":   "author_object_id",
			"foreignField": "_id",
			"as":           "author_info",
		}},
		{"$addFields": bson.M{
			"author_username": bson.M{"$ifNull": []interface{}{
				bson.M{"$arrayElemAt": []interface{}{"$author_info.username", 0}},
				projection.UnknownAuthor,
			}},
			"author_found": bson.M{"$gt": []interface{}{bson.M{"$size": "$author_info"}, 0}},
			"is_liked":     isLikedExpr(viewerID),
		}},
		{"$sort": bson.D{{Key: "created_at", Value: 1}}},
		{"$project": bson.M{
			"_id":        0,
			"id":         bson.M{"$toString": "$_id"},
			"post_id":    bson.M{"$toString": "$post_id"},
			"content":    1,
			"created_at": bson.M{"$ifNull": []interface{}{"$created_at", projection.DefaultCreatedAt}},
			"likes":      bson.M{"$ifNull": []interface{}{"$likes", 0}},
			"author_id": bson.M{"$cond": bson.M{
				"if":   "$author_found",
				"then": bson.M{"$ifNull": []interface{}{"$author_id", ""}},
				"else": "",
			}},
			"author_username": 1,
			"is_liked":        1,
		}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		util.Logger.Error("聚合查询评论失败", zap.Error(err), zap.String("post_id", postID.Hex()))
		return nil, err
	}
	defer cursor.Close(ctx)

	views := make([]*projection.CommentView, 0)
	if err := cursor.All(ctx, &views); err != nil {
		return nil, err
	}
	return views, nil
}

// ListByAuthor 返回某作者的评论（最新在前）
func (r *commentRepository) ListByAuthor(ctx context.Context, authorID string, limit int64) ([]*model.Comment, error) {
	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(limit)

	cursor, err := r.coll.Find(ctx, bson.M{"author_id": authorID}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	comments := make([]*model.Comment, 0)
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, err
	}
	return comments, nil
}

// AddLike 把 userID 加入评论的点赞集合并使计数器加一
func (r *commentRepository) AddLike(ctx context.Context, id primitive.ObjectID, userID string) error {
	return r.updateLike(ctx, id, bson.M{
		"$addToSet": bson.M{"liked_by": userID},
		"$inc":      bson.M{"likes": 1},
	})
}

// RemoveLike 把 userID 移出评论的点赞集合并使计数器减一
func (r *commentRepository) RemoveLike(ctx context.Context, id primitive.ObjectID, userID string) error {
	return r.updateLike(ctx, id, bson.M{
		"$pull": bson.M{"liked_by": userID},
		"$inc":  bson.M{"likes": -1},
	})
}

func (r *commentRepository) updateLike(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		util.Logger.Error("更新评论点赞失败", zap.Error(err), zap.String("comment_id", id.Hex()))
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}
