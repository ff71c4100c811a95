package mongo

import (
	"context"

	"github.com/OneVth/prj-board/internal/model"
	"github.com/OneVth/prj-board/internal/projection"
	"github.com/OneVth/prj-board/internal/repository/interfaces"
	"github.com/OneVth/prj-board/internal/util"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// postRepository 实现了 PostRepository 接口
type postRepository struct {
	coll *mongo.Collection
}

// NewPostRepository 创建一个新的 postRepository 实例
func NewPostRepository(db *mongo.Database) *postRepository {
	return &postRepository{coll: db.Collection("posts")}
}

// Create 创建一个新帖子
func (r *postRepository) Create(ctx context.Context, post *model.Post) error {
	result, err := r.coll.InsertOne(ctx, post)
	if err != nil {
		util.Logger.Error("创建帖子失败", zap.Error(err))
		return err
	}
	post.ID = result.InsertedID.(primitive.ObjectID)
	util.Logger.Info("帖子创建成功", zap.String("post_id", post.ID.Hex()))
	return nil
}

// FindByID 通过ID查找帖子
func (r *postRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Post, error) {
	var post model.Post
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&post)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// Update 按字段更新帖子
func (r *postRepository) Update(ctx context.Context, id primitive.ObjectID, fields map[string]interface{}) error {
	_, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		util.Logger.Error("更新帖子失败", zap.Error(err), zap.String("post_id", id.Hex()))
	}
	return err
}

// Delete 删除帖子，评论不做级联删除
func (r *postRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		util.Logger.Error("删除帖子失败", zap.Error(err), zap.String("post_id", id.Hex()))
		return err
	}
	util.Logger.Info("帖子删除成功", zap.String("post_id", id.Hex()))
	return nil
}

// AddLike 把 userID 加入点赞集合并使计数器加一
// 集合变更和计数器变更在同一次更新中完成，保证 likes == |liked_by|
func (r *postRepository) AddLike(ctx context.Context, id primitive.ObjectID, userID string) error {
	return r.updateLike(ctx, id, bson.M{
		"$addToSet": bson.M{"liked_by": userID},
		"$inc":      bson.M{"likes": 1},
	})
}

// RemoveLike 把 userID 移出点赞集合并使计数器减一
func (r *postRepository) RemoveLike(ctx context.Context, id primitive.ObjectID, userID string) error {
	return r.updateLike(ctx, id, bson.M{
		"$pull": bson.M{"liked_by": userID},
		"$inc":  bson.M{"likes": -1},
	})
}

func (r *postRepository) updateLike(ctx context.Context, id primitive.ObjectID, update bson.M) error {
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		util.Logger.Error("更新点赞失败", zap.Error(err), zap.String("post_id", id.Hex()))
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// Count 统计符合过滤条件的帖子总数，搜索条件在计数前生效
func (r *postRepository) Count(ctx context.Context, opts interfaces.ListPostsOptions) (int64, error) {
	return r.coll.CountDocuments(ctx, matchFilter(opts))
}

// ListEnriched 返回补充了评论数、作者名和点赞状态的帖子页
//
// 三种排序模式共用同一条聚合管道：评论和用户集合通过 $lookup 一次性连接，
// 一页最多100行也只需要这一次数据库往返
func (r *postRepository) ListEnriched(ctx context.Context, opts interfaces.ListPostsOptions) ([]*projection.PostView, error) {
	pipeline := []bson.M{
		{"$match": matchFilter(opts)},
		// author_id 以字符串存储，连接 users 前先转换为 ObjectId
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
			"from":         "comments",
			"localField":   "_id",
			"foreignField": "post_id",
			"as":           "comments_list",
		}},
		{"$lookup": bson.M{
			"from":         "users",
			"localField":   "author_object_id",
			"foreignField": "_id",
			"as":           "author_info",
		}},
		{"$addFields": bson.M{
			"comment_count": bson.M{"$size": "$comments_list"},
			"author_username": bson.M{"$ifNull": []interface{}{
				bson.M{"$arrayElemAt": []interface{}{"$author_info.username", 0}},
				projection.UnknownAuthor,
			}},
			"author_found": bson.M{"$gt": []interface{}{bson.M{"$size": "$author_info"}, 0}},
			"is_liked":     isLikedExpr(opts.ViewerID),
		}},
		sortStage(opts.Sort),
		{"$skip": opts.Skip},
		{"$limit": opts.Limit},
		{"$project": bson.M{
			"_id":        0,
			"id":         bson.M{"$toString": "$_id"},
			"title":      1,
			"content":    1,
			"created_at": bson.M{"$ifNull": []interface{}{"$created_at", projection.DefaultCreatedAt}},
			"likes":      bson.M{"$ifNull": []interface{}{"$likes", 0}},
			"comment_count": 1,
			// 作者不存在时 author_id 回退为空串，作者名回退为 Unknown
			"author_id": bson.M{"$cond": bson.M{
				"if":   "$author_found",
				"then": bson.M{"$ifNull": []interface{}{"$author_id", ""}},
				"else": "",
			}},
			"author_username": 1,
			"image":           1,
			"is_liked":        1,
		}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		util.Logger.Error("聚合查询帖子失败", zap.Error(err))
		return nil, err
	}
	defer cursor.Close(ctx)

	views := make([]*projection.PostView, 0, opts.Limit)
	if err := cursor.All(ctx, &views); err != nil {
		return nil, err
	}
	return views, nil
}

func matchFilter(opts interfaces.ListPostsOptions) bson.M {
	filter := bson.M{}
	if opts.Query != "" {
		filter["$text"] = bson.M{"$search": opts.Query}
	}
	if len(opts.AuthorIn) > 0 {
		filter["author_id"] = bson.M{"$in": opts.AuthorIn}
	}
	return filter
}

// sortStage 返回排序阶段，三种模式的并列项都以时间倒序打破
func sortStage(sort string) bson.M {
	switch sort {
	case "likes":
		return bson.M{"$sort": bson.D{{Key: "likes", Value: -1}, {Key: "created_at", Value: -1}}}
	case "comments":
		return bson.M{"$sort": bson.D{{Key: "comment_count", Value: -1}, {Key: "created_at", Value: -1}}}
	default:
		return bson.M{"$sort": bson.D{{Key: "created_at", Value: -1}}}
	}
}

// isLikedExpr 返回访问者点赞状态的表达式，未登录时恒为 false
func isLikedExpr(viewerID string) interface{} {
	if viewerID == "" {
		return false
	}
	return bson.M{"$in": []interface{}{
		viewerID,
		bson.M{"$ifNull": []interface{}{"$liked_by", bson.A{}}},
	}}
}
